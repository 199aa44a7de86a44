package renderer

import (
	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/layout"
)

// Renderer 是排版引擎驱动的输出后端，例如 PDF。
// 它同时提供绘制原语与字体度量，保证断行时量到的宽度与最终绘制一致。
type Renderer interface {
	layout.Renderer
	layout.Measurer
	// SetMeta 设置写入输出文件的文档属性，需在 Save 之前调用。
	SetMeta(meta document.Meta)
}

// Factory 为一次转换创建全新的渲染器；渲染器不在转换之间复用。
type Factory func(page layout.PageGeometry) (Renderer, error)
