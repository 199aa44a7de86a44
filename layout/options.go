package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// Renderer 是排版引擎驱动的绘制原语。引擎只负责按顺序调用，不接触像素或字节。
// 坐标单位为 mm，原点在页面左下角；y 为文本行顶部。
type Renderer interface {
	BeginTextBlock(x, y, leading float64) error
	SetFont(style FontStyle, size float64) error
	// DrawLine 在当前笔位置绘制文本，笔位置随文本宽度右移。
	DrawLine(text string) error
	// AdvanceLine 将笔位置移到下一行行首（下移 leading）。
	AdvanceLine() error
	EndTextBlock() error
	// DrawImage 以左下角 (x, y) 绘制图片。
	DrawImage(data []byte, x, y, width, height float64) error
	NewPage() error
	Save(path string) error
}

// Measurer 提供字体宽度度量。size 为 pt，返回值为 mm。
type Measurer interface {
	TextWidth(text string, style FontStyle, size float64) float64
}

// Options 配置排版阶段所需的依赖与版式参数。
type Options struct {
	Page       PageGeometry
	FontSize   float64 // pt
	LineHeight float64 // mm

	// ParagraphSpacing 为段后间距，以行高为单位。
	ParagraphSpacing float64
	Bullet           string

	ImageMaxWidth float64 // 全局图片最大宽度（mm）
	ImagePadding  float64 // 图片下方留白（mm）
	ImageDPI      float64 // 像素到 mm 的换算分辨率

	Classifier Classifier
	Renderer   Renderer
	Measurer   Measurer
	Logger     *zap.Logger
}

// DefaultOptions 返回 A4、12pt、14.5pt 行距、50pt 边距的默认版式。
func DefaultOptions() Options {
	margin := 50 * PtToMm
	return Options{
		Page: PageGeometry{
			Width:  PageSizes["A4"].Width,
			Height: PageSizes["A4"].Height,
			Margin: Margin{Top: margin, Right: margin, Bottom: margin, Left: margin},
		},
		FontSize:         12,
		LineHeight:       14.5 * PtToMm,
		ParagraphSpacing: 1,
		Bullet:           "• ",
		ImageMaxWidth:    400 * PtToMm,
		ImagePadding:     10 * PtToMm,
		ImageDPI:         72,
		Classifier:       BoldShort(DefaultHeadingLimit),
	}
}

func (o *Options) validate() error {
	if o.Renderer == nil {
		return fmt.Errorf("layout: 缺少渲染后端 Renderer")
	}
	if o.Measurer == nil {
		return fmt.Errorf("layout: 缺少字体度量 Measurer")
	}
	if o.Page.ColumnWidth() <= 0 {
		return fmt.Errorf("layout: 页面宽度 %gmm 不足以容纳左右边距", o.Page.Width)
	}
	if o.LineHeight <= 0 || o.FontSize <= 0 {
		return fmt.Errorf("layout: 字号与行高必须为正数")
	}
	if o.Page.ContentHeight() < o.LineHeight {
		return fmt.Errorf("layout: 内容区高度 %gmm 小于行高 %gmm", o.Page.ContentHeight(), o.LineHeight)
	}
	if o.Classifier == nil {
		o.Classifier = BoldShort(DefaultHeadingLimit)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.ImageDPI <= 0 {
		o.ImageDPI = 72
	}
	if o.ParagraphSpacing < 0 {
		o.ParagraphSpacing = 0
	}
	return nil
}
