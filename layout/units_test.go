package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.5, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"1in", 25.4, UnitIN},
		{"2.54cm", 25.4, UnitCM},
		{"72pt", 25.4, UnitPT},
		{" 17.5 mm ", 17.5, UnitMM},
		{"20", 20, UnitNone},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if l.Unit != c.unit {
			t.Fatalf("%q 单位期望 %v，实际 %v", c.in, c.unit, l.Unit)
		}
		if math.Abs(l.MM()-c.mm) > 1e-9 {
			t.Fatalf("%q 转 mm 期望 %g，实际 %g", c.in, c.mm, l.MM())
		}
	}
	for _, bad := range []string{"", "pt", "-3mm", "abc"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("%q 应当解析失败", bad)
		}
	}
}

func TestLookupPageSize(t *testing.T) {
	a4, ok := LookupPageSize("a4", false)
	if !ok || a4.Width != 210 || a4.Height != 297 {
		t.Fatalf("A4 尺寸错误: %+v ok=%v", a4, ok)
	}
	land, _ := LookupPageSize("A4", true)
	if land.Width != 297 || land.Height != 210 {
		t.Fatalf("A4 横向尺寸错误: %+v", land)
	}
	if _, ok := LookupPageSize("tabloid", false); ok {
		t.Fatalf("未知纸张不应命中")
	}
}

func TestDefaultGeometry(t *testing.T) {
	o := DefaultOptions()
	want := 210 - 2*50*PtToMm
	if math.Abs(o.Page.ColumnWidth()-want) > 1e-9 {
		t.Fatalf("默认栏宽期望 %g，实际 %g", want, o.Page.ColumnWidth())
	}
	if math.Abs(o.Page.Top()-(297-50*PtToMm)) > 1e-9 {
		t.Fatalf("默认顶部位置错误: %g", o.Page.Top())
	}
}
