package htmldoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/docflow/document"
)

const sample = `<html><head><title>Doc Title</title>
<meta name="author" content="Eve"><meta name="keywords" content="x, y">
<style>p { color: red }</style></head>
<body>
<h2>Intro  <em>part</em></h2>
<p>Some   <b>bold</b> and <i>it</i>
 text<br>after</p>
<div>outer <p>inner</p> tail</div>
<ul><li>one</li><li><p>two</p></li></ul>
<ol><li>three</li></ol>
<pre>a  b

c</pre>
<p><img src="data:image/png;base64,iVBORw=="> <img src="pic.png"> <img src="http://example.com/x.png"></p>
<script>ignored()</script>
<table><tr><th>H</th><td>v</td></tr></table>
</body></html>`

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), []byte("pic"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := New().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := []document.Paragraph{
		{Style: "Heading2", Runs: []document.Run{
			{Text: "Intro ", Bold: true},
			{Text: "part", Bold: true, Italic: true},
		}},
		{Runs: []document.Run{
			{Text: "Some "},
			{Text: "bold", Bold: true},
			{Text: " and "},
			{Text: "it", Italic: true},
			{Text: " text\nafter"},
		}},
		{Runs: []document.Run{{Text: "outer"}}},
		{Runs: []document.Run{{Text: "inner"}}},
		{Runs: []document.Run{{Text: "tail"}}},
		{NumID: "ul1", Runs: []document.Run{{Text: "one"}}},
		{NumID: "ul1", Runs: []document.Run{{Text: "two"}}},
		{NumID: "ol2", Runs: []document.Run{{Text: "three"}}},
		{Style: "Code", Runs: []document.Run{{Text: "a  b"}}},
		{Style: "Code", Runs: []document.Run{{Text: "\u00a0"}}},
		{Style: "Code", Runs: []document.Run{{Text: "c"}}},
		{Runs: []document.Run{
			{Images: []document.Image{{Name: "image1.png", Data: []byte{0x89, 'P', 'N', 'G'}}}},
			{Text: " "},
			{Images: []document.Image{{Name: "pic.png", Data: []byte("pic")}}},
			{Text: " "},
			{Images: []document.Image{{Name: "x.png"}}},
		}},
		{Runs: []document.Run{{Text: "H", Bold: true}}},
		{Runs: []document.Run{{Text: "v"}}},
	}
	if diff := cmp.Diff(want, doc.Paragraphs); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}

	wantMeta := document.Meta{Title: "Doc Title", Author: "Eve", Creator: "docflow", Keywords: []string{"x", "y"}}
	if diff := cmp.Diff(wantMeta, doc.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeclaredCharset(t *testing.T) {
	src := "<html><head><meta charset=\"windows-1252\"></head><body><p>caf\xe9</p></body></html>"
	doc, err := Parse(strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Paragraphs) != 1 || doc.Paragraphs[0].Text() != "café" {
		t.Fatalf("unexpected paragraphs %+v", doc.Paragraphs)
	}
}

func TestCollapse(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"   ":         " ",
		"a  b":        "a b",
		"\n lead":     " lead",
		"trail \t":    "trail ",
		" both\n\nx ": " both x ",
	}
	for in, want := range cases {
		if got := collapse(in); got != want {
			t.Errorf("collapse(%q) = %q, want %q", in, got, want)
		}
	}
}
