package layout

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"unicode/utf8"
)

// monoMeasurer 是等宽度量：每个字符 1mm，与字号和样式无关。
type monoMeasurer struct{}

func (monoMeasurer) TextWidth(text string, _ FontStyle, _ float64) float64 {
	return float64(utf8.RuneCountInString(text))
}

func mono(s string) float64 { return float64(utf8.RuneCountInString(s)) }

// testOptions 构造无边距页面：栏宽 column，内容高度 height，行高 1mm，1 像素 = 1mm。
func testOptions(r Renderer, column, height float64) Options {
	return Options{
		Page:       PageGeometry{Width: column, Height: height},
		FontSize:   10,
		LineHeight: 1,
		Bullet:     "• ",
		ImageDPI:   mmPerInch,
		Renderer:   r,
		Measurer:   monoMeasurer{},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("生成测试图片失败: %v", err)
	}
	return buf.Bytes()
}

// lineTops 根据记录的调用序列还原每次 drawLine 所在行的顶部纵坐标。
func lineTops(ops []Op) []float64 {
	var (
		tops    []float64
		y       float64
		leading float64
	)
	for _, op := range ops {
		switch op.Name {
		case "beginText":
			y, leading = op.Y, op.Height
		case "advanceLine":
			y -= leading
		case "drawLine":
			tops = append(tops, y)
		}
	}
	return tops
}
