// Package markdown extracts the paragraph model from Markdown sources by
// walking the goldmark AST.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/source"
)

const format = "markdown"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Extractor implements source.Extractor for .md files.
type Extractor struct{}

// New returns a Markdown extractor.
func New() *Extractor { return &Extractor{} }

// Extract parses the file and resolves images relative to it.
func (Extractor) Extract(path string) (*document.Document, error) {
	src, err := source.ReadFile(format, path)
	if err != nil {
		return nil, err
	}
	doc := Parse(src, path)
	doc.Meta = source.DefaultMeta(doc.Meta, path)
	return doc, nil
}

// Parse converts Markdown bytes. docPath locates relative image references;
// images that cannot be read keep their name but no data.
func Parse(src []byte, docPath string) *document.Document {
	root := markdown.Parser().Parse(text.NewReader(src))
	w := &walker{src: src, docPath: docPath}
	w.blocks(root)
	return &document.Document{Meta: document.Meta{Title: w.title}, Paragraphs: w.paras}
}

type style struct {
	bold, italic bool
}

type walker struct {
	src     []byte
	docPath string
	paras   []document.Paragraph
	title   string
	lists   int
}

func (w *walker) blocks(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch b := c.(type) {
		case *ast.Heading:
			p := document.Paragraph{Style: fmt.Sprintf("Heading%d", b.Level)}
			p.Runs = w.inlines(b, style{bold: true}, nil)
			if w.title == "" && b.Level == 1 {
				w.title = strings.TrimSpace(p.Text())
			}
			w.paras = append(w.paras, p)
		case *ast.Paragraph, *ast.TextBlock:
			p := document.Paragraph{Runs: w.inlines(b, style{}, nil)}
			if item, ok := b.Parent().(*ast.ListItem); ok && item.FirstChild() == b {
				p.NumID = w.listID(item)
			}
			w.paras = append(w.paras, p)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := b.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := strings.TrimRight(string(seg.Value(w.src)), "\n")
				w.paras = append(w.paras, document.CodeLine(line))
			}
		case *ast.List:
			w.lists++
			w.blocks(b)
		case *east.TableCell:
			w.paras = append(w.paras, document.Paragraph{Runs: w.inlines(b, style{bold: isHeaderCell(b)}, nil)})
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			w.blocks(c)
		}
	}
}

func (w *walker) listID(item *ast.ListItem) string {
	if list, ok := item.Parent().(*ast.List); ok && list.IsOrdered() {
		return fmt.Sprintf("ol%d", w.lists)
	}
	return fmt.Sprintf("ul%d", w.lists)
}

func isHeaderCell(cell *east.TableCell) bool {
	_, ok := cell.Parent().(*east.TableHeader)
	return ok
}

func (w *walker) inlines(n ast.Node, st style, runs []document.Run) []document.Run {
	add := func(s string, st style) {
		if s == "" {
			return
		}
		if k := len(runs) - 1; k >= 0 && len(runs[k].Images) == 0 && runs[k].Bold == st.bold && runs[k].Italic == st.italic {
			runs[k].Text += s
			return
		}
		runs = append(runs, document.Run{Text: s, Bold: st.bold, Italic: st.italic})
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch in := c.(type) {
		case *ast.Text:
			add(string(in.Segment.Value(w.src)), st)
			if in.HardLineBreak() {
				add("\n", st)
			} else if in.SoftLineBreak() {
				add(" ", st)
			}
		case *ast.String:
			add(string(in.Value), st)
		case *ast.Emphasis:
			inner := st
			if in.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			runs = w.inlines(in, inner, runs)
		case *ast.AutoLink:
			add(string(in.Label(w.src)), st)
		case *ast.Image:
			runs = append(runs, document.Run{Images: []document.Image{w.image(string(in.Destination))}})
		case *ast.RawHTML:
		default:
			runs = w.inlines(c, st, runs)
		}
	}
	return runs
}

func (w *walker) image(dest string) document.Image {
	data, name, err := source.ResolveAsset(w.docPath, dest)
	if err != nil {
		return document.Image{Name: dest}
	}
	return document.Image{Name: name, Data: data}
}
