package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/docflow/document"
)

func para(runs ...document.Run) document.Paragraph { return document.Paragraph{Runs: runs} }

func TestBoldShortHeading(t *testing.T) {
	c := BoldShort(DefaultHeadingLimit)
	cases := []struct {
		name string
		p    document.Paragraph
		want bool
	}{
		{"bold 10 chars", para(document.Run{Text: "0123456789", Bold: true}), true},
		{"plain 50 chars", para(document.Run{Text: strings.Repeat("a", 50)}), false},
		{"bold 30 chars", para(document.Run{Text: strings.Repeat("b", 30), Bold: true}), false},
		{"bold 29 chars", para(document.Run{Text: strings.Repeat("b", 29), Bold: true}), true},
		{"mixed runs", para(document.Run{Text: "Intro", Bold: true}, document.Run{Text: " tail"}), false},
		{"plain whitespace run ignored", para(document.Run{Text: "Title", Bold: true}, document.Run{Text: " "}), true},
		{"no text", para(document.Run{Images: []document.Image{{Name: "a.png"}}}), false},
		{"empty", document.Paragraph{}, false},
	}
	for _, tc := range cases {
		first := c(tc.p)
		if first.Heading != tc.want {
			t.Fatalf("%s: 期望 heading=%v，实际 %v", tc.name, tc.want, first.Heading)
		}
		// 相等的段落（独立副本）重复分类结果一致
		again := document.Paragraph{Style: tc.p.Style, NumID: tc.p.NumID, Runs: append([]document.Run(nil), tc.p.Runs...)}
		if second := c(again); second != first {
			t.Fatalf("%s: 重复分类结果不一致 %+v != %+v", tc.name, first, second)
		}
	}
}

func TestBoldShortCountsRunes(t *testing.T) {
	// 中文按字符计数而不是按字节
	p := para(document.Run{Text: strings.Repeat("标", 20), Bold: true})
	if !BoldShort(DefaultHeadingLimit)(p).Heading {
		t.Fatalf("20 个汉字的粗体段落应当是标题")
	}
}

func TestNamedStyleAndAnyOf(t *testing.T) {
	h := document.Paragraph{Style: "Heading2", Runs: []document.Run{{Text: strings.Repeat("x", 80)}}}
	if !NamedStyle()(h).Heading {
		t.Fatalf("Heading2 样式应识别为标题")
	}
	if NamedStyle()(document.Paragraph{Style: "Normal"}).Heading {
		t.Fatalf("Normal 样式不应识别为标题")
	}
	c := AnyOf(NamedStyle(), BoldShort(DefaultHeadingLimit))
	if !c(h).Heading {
		t.Fatalf("AnyOf 应当命中样式名")
	}
	if !c(para(document.Run{Text: "Short", Bold: true})).Heading {
		t.Fatalf("AnyOf 应当命中粗体短段落")
	}
	if AnyOf()(h).Heading {
		t.Fatalf("空组合不应判定为标题")
	}
}
