package layout

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/ByLCY/docflow/document"
)

const mmPerInch = 25.4

// Controller 按段落顺序驱动断行与图片放置，维护排版游标并决定分页。
// Controller 本身不保存排版进度，所有可变状态都在显式传入的 LayoutState 中。
type Controller struct {
	opts   Options
	column float64
	log    *zap.Logger
}

// NewController 校验配置并创建控制器。
func NewController(opts Options) (*Controller, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Controller{opts: opts, column: opts.Page.ColumnWidth(), log: opts.Logger}, nil
}

// Layout 是 NewController + Run 的便捷封装。
func Layout(paragraphs []document.Paragraph, opts Options) (Summary, error) {
	c, err := NewController(opts)
	if err != nil {
		return Summary{}, err
	}
	return c.Run(paragraphs)
}

// NewState 返回首页顶部的初始状态。
func (c *Controller) NewState() *LayoutState {
	return &LayoutState{
		CursorY:   c.opts.Page.Top(),
		Remaining: c.column,
		Mode:      WritingText,
	}
}

// Run 依次排版全部段落，结束时关闭文本块。保存文件由调用方通过 Renderer.Save 完成。
func (c *Controller) Run(paragraphs []document.Paragraph) (Summary, error) {
	st := c.NewState()
	if err := c.openText(st); err != nil {
		return st.summary(), err
	}
	for i, p := range paragraphs {
		if err := c.Paragraph(st, p); err != nil {
			c.log.Debug("layout aborted", zap.Int("paragraph", i), zap.Error(err))
			return st.summary(), err
		}
	}
	if err := c.closeText(st); err != nil {
		return st.summary(), err
	}
	return st.summary(), nil
}

// Paragraph 排版一个段落：标题前后增加半行间距，项目符号段落首行绘制符号，段后留出段间距。
// 没有文字也没有图片的段落被整体跳过。
func (c *Controller) Paragraph(st *LayoutState, p document.Paragraph) error {
	items := Flatten(p)
	if len(items) == 0 {
		return nil
	}
	heading := c.opts.Classifier(p).Heading
	half := c.opts.LineHeight / 2

	if st.LineOpen {
		if err := c.finishLine(st); err != nil {
			return err
		}
	}
	if heading {
		if st.CursorY-half < c.opts.Page.Bottom()-widthEpsilon {
			if err := c.BeginPage(st); err != nil {
				return err
			}
		}
		st.CursorY -= half
	}

	bullet := p.IsBullet()
	for _, item := range items {
		var err error
		switch item.Kind {
		case KindText:
			err = c.Text(st, item.Text, heading, &bullet)
		case KindImage:
			err = c.Image(st, item.Image)
		}
		if err != nil {
			return err
		}
	}

	if st.LineOpen {
		if err := c.finishLine(st); err != nil {
			return err
		}
	}
	gap := c.opts.ParagraphSpacing * c.opts.LineHeight
	if heading {
		gap += half
	}
	st.CursorY = math.Max(st.CursorY-gap, c.opts.Page.Bottom())
	return nil
}

// Text 排版一个文本项。文本接在当前行剩余宽度之后继续排，超出部分按整栏宽度换行。
// bullet 非空且为 true 时，先在行首绘制项目符号并从首行可用宽度中扣除其宽度。
func (c *Controller) Text(st *LayoutState, item TextItem, heading bool, bullet *bool) error {
	style := FontStyle{Bold: item.Bold || heading, Italic: item.Italic}
	size := c.opts.FontSize
	measure := func(s string) float64 { return c.opts.Measurer.TextWidth(s, style, size) }

	if bullet != nil && *bullet && c.opts.Bullet != "" {
		*bullet = false
		if err := c.drawSegment(st, c.opts.Bullet, FontStyle{}); err != nil {
			return err
		}
	}

	lb := NewLineBreaker(item.Text, measure, st.Remaining, c.column)
	var last Line
	n := 0
	for lb.Next() {
		line := lb.Line()
		if n > 0 && st.LineOpen {
			if err := c.finishLine(st); err != nil {
				return err
			}
		}
		n++
		last = line
		if line.Text == "" {
			continue
		}
		if err := c.drawMeasured(st, line.Text, line.Width, style); err != nil {
			return err
		}
		st.stats.Lines++
	}
	if err := lb.Err(); err != nil {
		return err
	}
	// 行尾空白保留在当前行上，使下一个 run 与本 run 之间的空格不丢失。
	if last.Sep != "" && st.LineOpen && st.Remaining > 0 {
		if err := c.drawSegment(st, last.Sep, style); err != nil {
			return err
		}
	}
	return nil
}

// Image 关闭文本块并放置一张图片：按栏宽缩放、水平居中，放不下时先分页。
// 图片无法解码时记录日志并跳过，不影响文本流。
func (c *Controller) Image(st *LayoutState, img ImageItem) error {
	w, h, err := imageSize(img)
	if err != nil {
		c.skipImage(st, img, err)
		return nil
	}
	if st.LineOpen {
		if err := c.finishLine(st); err != nil {
			return err
		}
	}
	if err := c.closeText(st); err != nil {
		return err
	}
	st.Mode = PlacingImage

	scale := mmPerInch / c.opts.ImageDPI
	pl := Place(float64(w)*scale, float64(h)*scale, c.column, c.opts.ImageMaxWidth)
	pl = fitHeight(pl, c.opts.Page.ContentHeight())

	atTop := st.CursorY >= c.opts.Page.Top()-widthEpsilon
	if !atTop && st.CursorY-pl.Height < c.opts.Page.Bottom()-widthEpsilon {
		if err := c.BeginPage(st); err != nil {
			return err
		}
	}

	x := c.opts.Page.Margin.Left + (c.column-pl.Width)/2
	y := st.CursorY - pl.Height
	if err := c.opts.Renderer.DrawImage(img.Data, x, y, pl.Width, pl.Height); err != nil {
		var decodeErr *ImageDecodeError
		if !errors.As(err, &decodeErr) {
			return wrapRender("drawImage", err)
		}
		c.skipImage(st, img, err)
	} else {
		st.stats.Images++
		st.CursorY = math.Max(y-c.opts.ImagePadding, c.opts.Page.Bottom())
	}

	st.Mode = WritingText
	return c.openText(st)
}

// BeginPage 结束当前页并把游标复位到新页顶部。
func (c *Controller) BeginPage(st *LayoutState) error {
	reopen := st.TextOpen
	if err := c.closeText(st); err != nil {
		return err
	}
	if err := c.opts.Renderer.NewPage(); err != nil {
		return wrapRender("newPage", err)
	}
	st.Page++
	st.CursorY = c.opts.Page.Top()
	st.CursorX = 0
	st.Remaining = c.column
	st.LineOpen = false
	c.log.Debug("page break", zap.Int("page", st.Page+1))
	if reopen && st.Mode == WritingText {
		return c.openText(st)
	}
	return nil
}

func (c *Controller) skipImage(st *LayoutState, img ImageItem, err error) {
	st.stats.SkippedImages++
	c.log.Warn("skipping unreadable image",
		zap.String("image", img.Name),
		zap.Int("page", st.Page+1),
		zap.Error(err))
}

// drawSegment 在当前行绘制一段文字（项目符号或行尾空白）。
func (c *Controller) drawSegment(st *LayoutState, text string, style FontStyle) error {
	w := c.opts.Measurer.TextWidth(text, style, c.opts.FontSize)
	return c.drawMeasured(st, text, w, style)
}

func (c *Controller) drawMeasured(st *LayoutState, text string, width float64, style FontStyle) error {
	if err := c.startLine(st); err != nil {
		return err
	}
	if err := c.setFont(st, style); err != nil {
		return err
	}
	if err := c.opts.Renderer.DrawLine(text); err != nil {
		return wrapRender("drawLine", err)
	}
	st.CursorX += width
	st.Remaining = math.Max(c.column-st.CursorX, 0)
	st.LineOpen = true
	return nil
}

// startLine 在一行开始前检查是否越过下边距，并确保文本块位于游标处。
func (c *Controller) startLine(st *LayoutState) error {
	if !st.LineOpen && st.CursorY-c.opts.LineHeight < c.opts.Page.Bottom()-widthEpsilon {
		if err := c.BeginPage(st); err != nil {
			return err
		}
	}
	if !st.TextOpen {
		return c.openText(st)
	}
	if !st.LineOpen && math.Abs(st.penY-st.CursorY) > widthEpsilon {
		// 段间距等非整行位移：重开文本块定位到游标
		if err := c.closeText(st); err != nil {
			return err
		}
		return c.openText(st)
	}
	return nil
}

// finishLine 结束当前行：游标下移一个行高，剩余宽度复位为整栏。
func (c *Controller) finishLine(st *LayoutState) error {
	inSync := st.TextOpen && math.Abs(st.penY-st.CursorY) <= widthEpsilon
	st.CursorY -= c.opts.LineHeight
	st.CursorX = 0
	st.Remaining = c.column
	st.LineOpen = false
	if inSync {
		if err := c.opts.Renderer.AdvanceLine(); err != nil {
			return wrapRender("advanceLine", err)
		}
		st.penY = st.CursorY
	}
	return nil
}

func (c *Controller) openText(st *LayoutState) error {
	if st.TextOpen {
		return nil
	}
	if err := c.opts.Renderer.BeginTextBlock(c.opts.Page.Margin.Left, st.CursorY, c.opts.LineHeight); err != nil {
		return wrapRender("beginTextBlock", err)
	}
	st.TextOpen = true
	st.fontSet = false
	st.penY = st.CursorY
	st.Mode = WritingText
	return nil
}

func (c *Controller) closeText(st *LayoutState) error {
	if !st.TextOpen {
		return nil
	}
	if err := c.opts.Renderer.EndTextBlock(); err != nil {
		return wrapRender("endTextBlock", err)
	}
	st.TextOpen = false
	return nil
}

func (c *Controller) setFont(st *LayoutState, style FontStyle) error {
	if st.fontSet && st.Style == style {
		return nil
	}
	if err := c.opts.Renderer.SetFont(style, c.opts.FontSize); err != nil {
		return wrapRender("setFont", err)
	}
	st.Style = style
	st.fontSet = true
	return nil
}

func wrapRender(op string, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Op: op, Err: err}
}
