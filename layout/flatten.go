package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/docflow/document"
)

const tabWidth = 4

// Flatten 将段落的 run 与内嵌图片按原始顺序展开为内容项。
// 每个 run 先输出其图片，再输出清洗后的非空文本。
func Flatten(p document.Paragraph) []ContentItem {
	var items []ContentItem
	for _, run := range p.Runs {
		for _, img := range run.Images {
			items = append(items, NewImageItem(ImageItem{
				Name:   img.Name,
				Data:   img.Data,
				Width:  img.Width,
				Height: img.Height,
			}))
		}
		if text := Sanitize(run.Text); text != "" {
			items = append(items, NewTextItem(text, run.Bold, run.Italic))
		}
	}
	return items
}

// Sanitize 去掉回车，制表符展开为 4 个空格，其余控制字符替换为空格，并做 NFC 规范化。
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFC.String(s) {
		switch {
		case r == '\r':
			continue
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case unicode.IsControl(r):
			b.WriteRune(' ')
		case unicode.Is(unicode.Cf, r):
			// 零宽格式字符在度量上不可见，直接丢弃
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
