package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/docflow/document"
)

func TestFlattenOrder(t *testing.T) {
	img := document.Image{Name: "chart.png", Data: []byte{1, 2}, Width: 4, Height: 2}
	p := document.Paragraph{Runs: []document.Run{
		{Text: "before ", Images: []document.Image{img}},
		{Text: ""},
		{Text: "bold", Bold: true},
		{Text: "\r"},
		{Text: "it", Italic: true},
	}}
	got := Flatten(p)
	want := []ContentItem{
		NewImageItem(ImageItem{Name: "chart.png", Data: []byte{1, 2}, Width: 4, Height: 2}),
		NewTextItem("before ", false, false),
		NewTextItem("bold", true, false),
		NewTextItem("it", false, true),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flatten 结果不符 (-want +got):\n%s", diff)
	}
}

func TestFlattenEmptyParagraph(t *testing.T) {
	if items := Flatten(document.Paragraph{Runs: []document.Run{{Text: ""}, {Text: "\r"}}}); len(items) != 0 {
		t.Fatalf("空段落不应产生内容项: %+v", items)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"a\tb":            "a    b",
		"line\r\nnext":    "line next",
		"zero\u200bwidth": "zerowidth",
		"e\u0301":         "\u00e9",
		"bell\x07":        "bell ",
		"":                "",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
}
