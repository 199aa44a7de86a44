// Package htmldoc extracts the paragraph model from HTML documents.
package htmldoc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/source"
)

const format = "html"

// Extractor implements source.Extractor for .html and .htm files.
type Extractor struct{}

// New returns an HTML extractor.
func New() *Extractor { return &Extractor{} }

// Extract parses the file, honouring its declared character set, and resolves
// relative image sources against the file's directory.
func (Extractor) Extract(filename string) (*document.Document, error) {
	src, err := source.ReadFile(format, filename)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(bytes.NewReader(src), filename)
	if err != nil {
		return nil, &source.ExtractionError{Format: format, Path: filename, Err: err}
	}
	doc.Meta = source.DefaultMeta(doc.Meta, filename)
	return doc, nil
}

// Parse reads HTML from r. docPath locates relative image references.
func Parse(r io.Reader, docPath string) (*document.Document, error) {
	in, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	root, err := html.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	w := &walker{docPath: docPath}
	w.node(root, style{})
	w.flush()
	return &document.Document{Meta: w.meta, Paragraphs: w.paras}, nil
}

type style struct {
	bold, italic bool
}

type walker struct {
	docPath string
	meta    document.Meta
	paras   []document.Paragraph
	cur     document.Paragraph
	lists   []string
	listSeq int
	item    string // list id waiting for the first paragraph of an <li>
	images  int
}

var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "main": true, "nav": true, "aside": true, "blockquote": true,
	"figure": true, "figcaption": true, "address": true, "table": true, "tr": true,
	"td": true, "th": true, "dl": true, "dt": true, "dd": true, "hr": true,
	"form": true, "fieldset": true, "center": true, "body": true,
}

var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "svg": true, "object": true,
}

func (w *walker) node(n *html.Node, st style) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, st)
		return
	case html.ElementNode:
	default:
		w.children(n, st)
		return
	}

	tag := n.Data
	switch {
	case skipped[tag]:
	case tag == "head":
		w.head(n)
	case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
		w.flush()
		w.cur.Style = "Heading" + tag[1:]
		w.children(n, style{bold: true, italic: st.italic})
		w.flush()
	case tag == "ul" || tag == "ol":
		w.flush()
		w.listSeq++
		w.lists = append(w.lists, fmt.Sprintf("%s%d", tag, w.listSeq))
		w.children(n, st)
		w.lists = w.lists[:len(w.lists)-1]
		w.flush()
	case tag == "li":
		w.flush()
		if len(w.lists) > 0 {
			w.item = w.lists[len(w.lists)-1]
		} else {
			w.item = "li"
		}
		w.children(n, st)
		w.flush()
		w.item = ""
	case tag == "pre":
		w.flush()
		body := strings.TrimSuffix(textContent(n), "\n")
		for _, line := range strings.Split(body, "\n") {
			w.paras = append(w.paras, document.CodeLine(line))
		}
	case tag == "br":
		w.add("\n", st)
	case tag == "img":
		w.cur.Runs = append(w.cur.Runs, document.Run{Images: []document.Image{w.image(attr(n, "src"))}})
	case tag == "b" || tag == "strong" || tag == "th":
		inner := st
		inner.bold = true
		w.block(n, inner)
	case tag == "i" || tag == "em" || tag == "cite" || tag == "var" || tag == "dfn":
		inner := st
		inner.italic = true
		w.children(n, inner)
	default:
		w.block(n, st)
	}
}

// block walks n's children, closing the current paragraph around block elements.
func (w *walker) block(n *html.Node, st style) {
	isBlock := blocks[n.Data]
	if isBlock {
		w.flush()
	}
	w.children(n, st)
	if isBlock {
		w.flush()
	}
}

func (w *walker) children(n *html.Node, st style) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, st)
	}
}

func (w *walker) head(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			w.meta.Title = strings.TrimSpace(textContent(c))
		case "meta":
			content := strings.TrimSpace(attr(c, "content"))
			switch strings.ToLower(attr(c, "name")) {
			case "author":
				w.meta.Author = content
			case "description":
				w.meta.Subject = content
			case "keywords":
				for _, k := range strings.Split(content, ",") {
					if k = strings.TrimSpace(k); k != "" {
						w.meta.Keywords = append(w.meta.Keywords, k)
					}
				}
			}
		}
	}
}

// text adds character data with HTML whitespace collapsing.
func (w *walker) text(s string, st style) {
	s = collapse(s)
	if w.atLineStart() {
		s = strings.TrimLeft(s, " ")
	}
	w.add(s, st)
}

func (w *walker) atLineStart() bool {
	runs := w.cur.Runs
	if len(runs) == 0 {
		return true
	}
	last := runs[len(runs)-1]
	return len(last.Images) == 0 && (strings.HasSuffix(last.Text, " ") || strings.HasSuffix(last.Text, "\n"))
}

func (w *walker) add(s string, st style) {
	if s == "" {
		return
	}
	runs := w.cur.Runs
	if k := len(runs) - 1; k >= 0 && len(runs[k].Images) == 0 && runs[k].Bold == st.bold && runs[k].Italic == st.italic {
		runs[k].Text += s
		return
	}
	w.cur.Runs = append(runs, document.Run{Text: s, Bold: st.bold, Italic: st.italic})
}

// flush closes the current paragraph; paragraphs without content are dropped.
func (w *walker) flush() {
	runs := w.cur.Runs
	if k := len(runs) - 1; k >= 0 && len(runs[k].Images) == 0 {
		runs[k].Text = strings.TrimRight(runs[k].Text, " ")
		if runs[k].Text == "" {
			runs = runs[:k]
		}
	}
	w.cur.Runs = runs
	if !w.cur.Empty() {
		if w.item != "" {
			w.cur.NumID, w.item = w.item, ""
		}
		w.paras = append(w.paras, w.cur)
	}
	w.cur = document.Paragraph{}
}

// image resolves an <img> source: data URIs are decoded, relative paths are
// read next to the document and remote URLs are kept by name only.
func (w *walker) image(src string) document.Image {
	w.images++
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		header, payload, _ := strings.Cut(rest, ",")
		mediaType, _, _ := strings.Cut(header, ";")
		img := document.Image{Name: fmt.Sprintf("image%d.%s", w.images, strings.TrimPrefix(mediaType, "image/"))}
		if strings.HasSuffix(header, ";base64") {
			if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
				img.Data = data
			}
		}
		return img
	}
	u, err := url.Parse(src)
	if err != nil {
		return document.Image{Name: src}
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return document.Image{Name: path.Base(u.Path)}
	}
	data, name, err := source.ResolveAsset(w.docPath, u.Path)
	if err != nil {
		return document.Image{Name: path.Base(u.Path)}
	}
	return document.Image{Name: name, Data: data}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapse folds whitespace runs into single spaces, keeping one space at
// either edge when the input had whitespace there.
func collapse(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	first, last := []rune(s)[0], []rune(s)[len([]rune(s))-1]
	if unicode.IsSpace(first) {
		out = " " + out
	}
	if unicode.IsSpace(last) {
		out += " "
	}
	return out
}
