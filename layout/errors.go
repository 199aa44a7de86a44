package layout

import "fmt"

// LayoutOverflowError 表示单个字符都无法放入整栏宽度，通常是栏宽配置错误或字体异常。
type LayoutOverflowError struct {
	Char  rune
	Width float64 // 该字符宽度（mm）
	Limit float64 // 整栏宽度（mm）
}

func (e *LayoutOverflowError) Error() string {
	return fmt.Sprintf("layout overflow: %q (%.3gmm) wider than column (%.3gmm)", e.Char, e.Width, e.Limit)
}

// ImageDecodeError 表示内嵌图片无法读取，可恢复：跳过该图片继续排版。
type ImageDecodeError struct {
	Name string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("decode image %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// RenderError 表示渲染原语失败，致命。
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Op, e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }
