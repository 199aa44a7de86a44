// Package document holds the paragraph model produced by source extractors
// and consumed by the layout engine. Values are built once and never mutated.
package document

import "strings"

// Document is an extracted source document.
type Document struct {
	Meta       Meta
	Paragraphs []Paragraph
}

// Meta carries descriptive properties copied into the output file.
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// Paragraph is an ordered list of runs. A non-empty NumID marks a list
// (bullet) paragraph; Style is the source's named paragraph style, if any.
type Paragraph struct {
	Runs  []Run
	NumID string
	Style string
}

// IsBullet reports whether the paragraph belongs to a numbered/bulleted list.
func (p Paragraph) IsBullet() bool { return p.NumID != "" }

// Text concatenates the text of all runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Empty reports whether the paragraph carries neither text nor images.
func (p Paragraph) Empty() bool {
	for _, r := range p.Runs {
		if r.Text != "" || len(r.Images) > 0 {
			return false
		}
	}
	return true
}

// Run is a span of text sharing one formatting state, plus the images
// anchored to it.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Images []Image
}

// Image is an embedded picture. Width and Height are the intrinsic pixel
// size when the extractor knows it; zero means "read it from the data".
type Image struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// blankLine keeps an empty preformatted line as one line of height: a plain
// space would be swallowed at the line break and the paragraph skipped.
const blankLine = "\u00a0"

// CodeLine builds a "Code" paragraph for one line of preformatted text.
func CodeLine(line string) Paragraph {
	if line == "" {
		line = blankLine
	}
	return Paragraph{Style: "Code", Runs: []Run{{Text: line}}}
}
