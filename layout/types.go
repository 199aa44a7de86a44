package layout

// 该文件定义排版阶段共用的数据结构：内容项、行、页面几何与排版游标。

// ItemKind 区分内容项的类型。
type ItemKind int

const (
	KindText ItemKind = iota
	KindImage
)

func (k ItemKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// ContentItem 是排版引擎实际调度的单元，文本或图片二选一。
// 通过 Kind 显式分派，不依赖运行时类型断言。
type ContentItem struct {
	Kind  ItemKind
	Text  TextItem
	Image ImageItem
}

// TextItem 是一段已清洗的同样式文本。
type TextItem struct {
	Text   string
	Bold   bool
	Italic bool
}

// ImageItem 保存图片原始字节与固有尺寸（像素，0 表示需要从数据中读取）。
type ImageItem struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// NewTextItem 构造文本内容项。
func NewTextItem(text string, bold, italic bool) ContentItem {
	return ContentItem{Kind: KindText, Text: TextItem{Text: text, Bold: bold, Italic: italic}}
}

// NewImageItem 构造图片内容项。
func NewImageItem(img ImageItem) ContentItem {
	return ContentItem{Kind: KindImage, Image: img}
}

// FontStyle 描述字重与斜体。
type FontStyle struct {
	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`
}

func (s FontStyle) String() string {
	switch {
	case s.Bold && s.Italic:
		return "bold-italic"
	case s.Bold:
		return "bold"
	case s.Italic:
		return "italic"
	default:
		return "regular"
	}
}

// Line 是 LineBreaker 产出的一行。
// Text 与 Sep 依次拼接即可还原原始文本；Sep 为断行处被吞掉的空白。
type Line struct {
	Text   string  `json:"text"`
	Sep    string  `json:"sep,omitempty"`
	Width  float64 `json:"width"`
	Forced bool    `json:"forced,omitempty"` // 字符级强制拆分产生的行
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top" mapstructure:"top"`
	Right  float64 `json:"right" mapstructure:"right"`
	Bottom float64 `json:"bottom" mapstructure:"bottom"`
	Left   float64 `json:"left" mapstructure:"left"`
}

// PageGeometry 描述页面尺寸与边距（mm）。
type PageGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// ColumnWidth 返回左右边距之间的可用宽度。
func (g PageGeometry) ColumnWidth() float64 { return g.Width - g.Margin.Left - g.Margin.Right }

// Top 返回内容区顶部的纵坐标（自页面底部量起）。
func (g PageGeometry) Top() float64 { return g.Height - g.Margin.Top }

// Bottom 返回内容区底部的纵坐标。
func (g PageGeometry) Bottom() float64 { return g.Margin.Bottom }

// ContentHeight 返回单页内容区高度。
func (g PageGeometry) ContentHeight() float64 { return g.Top() - g.Bottom() }

// Placement 是图片缩放后的尺寸。
type Placement struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mode 是 PageFlowController 的状态。
type Mode int

const (
	WritingText Mode = iota
	PlacingImage
)

func (m Mode) String() string {
	if m == PlacingImage {
		return "placing-image"
	}
	return "writing-text"
}

// LayoutState 是一次转换内唯一的可变排版游标，显式在各步骤之间传递。
type LayoutState struct {
	Page      int       // 当前页序号，从 0 开始
	CursorY   float64   // 下一行顶部的纵坐标（自页面底部量起，向下递减）
	CursorX   float64   // 当前行内已占用的水平偏移（相对栏左侧）
	Remaining float64   // 当前行剩余宽度，始终 >= 0
	Style     FontStyle // 当前字体样式
	Mode      Mode
	TextOpen  bool // 渲染器上是否有打开的文本块
	LineOpen  bool // 当前行是否已写入内容

	penY    float64 // 渲染器文本块当前行顶部
	fontSet bool
	stats   Summary
}

func (s *LayoutState) summary() Summary {
	sum := s.stats
	sum.Pages = s.Page + 1
	return sum
}

// Summary 汇总一次排版的结果。
type Summary struct {
	Pages         int `json:"pages"`
	Lines         int `json:"lines"`
	Images        int `json:"images"`
	SkippedImages int `json:"skippedImages"`
}
