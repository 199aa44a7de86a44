// Package fonts 提供内置字体。字体数据来自 golang.org/x/image/font/gofont，
// 随二进制一同编译，不依赖运行环境中的系统字体。
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，与 layout.FontStyle.String() 一致。
const (
	Regular    = "regular"
	Bold       = "bold"
	Italic     = "italic"
	BoldItalic = "bold-italic"
)

var builtin = map[string][]byte{
	Regular:    goregular.TTF,
	Bold:       gobold.TTF,
	Italic:     goitalic.TTF,
	BoldItalic: gobolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:bold" 或直接 "bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// ForStyle 按字重与斜体选择内置字体。
func ForStyle(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return builtin[BoldItalic]
	case bold:
		return builtin[Bold]
	case italic:
		return builtin[Italic]
	default:
		return builtin[Regular]
	}
}

// Names 返回全部内置字体名称。
func Names() []string { return []string{Regular, Bold, Italic, BoldItalic} }
