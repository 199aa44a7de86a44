package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// Op 是 Recorder 记录的一次渲染调用。
type Op struct {
	Name   string     `json:"op"`
	Text   string     `json:"text,omitempty"`
	Style  *FontStyle `json:"style,omitempty"`
	Size   float64    `json:"size,omitempty"`
	X      float64    `json:"x,omitempty"`
	Y      float64    `json:"y,omitempty"`
	Width  float64    `json:"width,omitempty"`
	Height float64    `json:"height,omitempty"`
	Path   string     `json:"path,omitempty"`
}

func (o Op) String() string {
	switch o.Name {
	case "drawLine":
		return fmt.Sprintf("drawLine(%q)", o.Text)
	case "setFont":
		return fmt.Sprintf("setFont(%s,%g)", o.Style, o.Size)
	case "beginText":
		return fmt.Sprintf("beginText(%.2f,%.2f)", o.X, o.Y)
	case "drawImage":
		return fmt.Sprintf("drawImage(%.2f,%.2f,%.2fx%.2f)", o.X, o.Y, o.Width, o.Height)
	default:
		return o.Name
	}
}

// Recorder 记录排版引擎发出的全部渲染调用。Inner 非空时同时转发给真实渲染器，
// 用于 --trace 调试输出；Inner 为空时可直接作为测试替身。
type Recorder struct {
	Inner Renderer
	Ops   []Op
	Pages int
}

// NewRecorder 创建记录器，inner 可为 nil。
func NewRecorder(inner Renderer) *Recorder {
	return &Recorder{Inner: inner, Pages: 1}
}

func (r *Recorder) add(op Op) { r.Ops = append(r.Ops, op) }

func (r *Recorder) BeginTextBlock(x, y, leading float64) error {
	r.add(Op{Name: "beginText", X: x, Y: y, Height: leading})
	if r.Inner != nil {
		return r.Inner.BeginTextBlock(x, y, leading)
	}
	return nil
}

func (r *Recorder) SetFont(style FontStyle, size float64) error {
	s := style
	r.add(Op{Name: "setFont", Style: &s, Size: size})
	if r.Inner != nil {
		return r.Inner.SetFont(style, size)
	}
	return nil
}

func (r *Recorder) DrawLine(text string) error {
	r.add(Op{Name: "drawLine", Text: text})
	if r.Inner != nil {
		return r.Inner.DrawLine(text)
	}
	return nil
}

func (r *Recorder) AdvanceLine() error {
	r.add(Op{Name: "advanceLine"})
	if r.Inner != nil {
		return r.Inner.AdvanceLine()
	}
	return nil
}

func (r *Recorder) EndTextBlock() error {
	r.add(Op{Name: "endText"})
	if r.Inner != nil {
		return r.Inner.EndTextBlock()
	}
	return nil
}

func (r *Recorder) DrawImage(data []byte, x, y, width, height float64) error {
	r.add(Op{Name: "drawImage", X: x, Y: y, Width: width, Height: height})
	if r.Inner != nil {
		return r.Inner.DrawImage(data, x, y, width, height)
	}
	return nil
}

func (r *Recorder) NewPage() error {
	r.Pages++
	r.add(Op{Name: "newPage"})
	if r.Inner != nil {
		return r.Inner.NewPage()
	}
	return nil
}

func (r *Recorder) Save(path string) error {
	r.add(Op{Name: "save", Path: path})
	if r.Inner != nil {
		return r.Inner.Save(path)
	}
	return nil
}

// Names 返回按顺序的调用名，便于在测试中比对调用序列。
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		names[i] = op.Name
	}
	return names
}

// Lines 返回所有 drawLine 的文本。
func (r *Recorder) Lines() []string {
	var lines []string
	for _, op := range r.Ops {
		if op.Name == "drawLine" {
			lines = append(lines, op.Text)
		}
	}
	return lines
}

// Trace 是写入调试 JSON 的内容。
type Trace struct {
	Source  string  `json:"source,omitempty"`
	Summary Summary `json:"summary"`
	Ops     []Op    `json:"ops"`
}

// WriteDebugJSON 将渲染调用序列输出为 JSON，便于调试或可视化。
func WriteDebugJSON(trace *Trace, path string) error {
	if trace == nil {
		return nil
	}
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
