// Package rtf extracts paragraphs from Rich Text Format files. The token tree
// comes from a participle grammar; an interpreter then walks the groups,
// tracking character formatting with group scoping the way RTF readers do.
package rtf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/source"
)

const format = "rtf"

// destinations whose content is never body text.
var skipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "listtable": true,
	"listoverridetable": true, "rsidtbl": true, "generator": true, "header": true,
	"headerl": true, "headerr": true, "footer": true, "footerl": true, "footerr": true,
	"footnote": true, "fldinst": true, "themedata": true, "colorschememapping": true,
	"latentstyles": true, "datastore": true, "xmlnstbl": true, "object": true,
	"nonshppict": true, "pntxtb": true, "pntxta": true,
}

var codePages = map[int]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
}

var symbols = map[string]string{
	"emdash": "—", "endash": "–", "bullet": "•",
	"lquote": "‘", "rquote": "’", "ldblquote": "“", "rdblquote": "”",
	"emspace": " ", "enspace": " ", "qmspace": " ",
}

// Extractor implements source.Extractor for .rtf files.
type Extractor struct{}

// New returns an RTF extractor.
func New() *Extractor { return &Extractor{} }

// Extract reads and decodes the file.
func (Extractor) Extract(path string) (*document.Document, error) {
	src, err := source.ReadFile(format, path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(src)
	if err != nil {
		return nil, &source.ExtractionError{Format: format, Path: path, Err: err}
	}
	doc.Meta = source.DefaultMeta(doc.Meta, path)
	return doc, nil
}

// Decode converts RTF bytes into the paragraph model.
func Decode(src []byte) (*document.Document, error) {
	file, err := ParseTokens(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(file.Items) == 0 || file.Items[0].Group == nil || !isDestination(file.Items[0].Group, "rtf") {
		return nil, fmt.Errorf("missing {\\rtf header")
	}
	in := &interpreter{cm: charmap.Windows1252}
	for _, it := range file.Items {
		if it.Group != nil {
			in.group(it.Group, state{uc: 1})
		}
	}
	if !in.para.Empty() {
		in.endParagraph()
	}
	return &document.Document{Meta: in.meta, Paragraphs: in.paras}, nil
}

// state is the character formatting scoped to a group.
type state struct {
	bold, italic bool
	uc           int
}

type interpreter struct {
	cm       *charmap.Charmap
	paras    []document.Paragraph
	para     document.Paragraph
	numID    string
	skip     int
	pictures int
	meta     document.Meta
}

func isDestination(g *Group, name string) bool {
	if len(g.Items) == 0 || g.Items[0].Control == nil {
		return false
	}
	return g.Items[0].Control.Name == name
}

func (in *interpreter) group(g *Group, st state) {
	if len(g.Items) == 0 {
		return
	}
	items := g.Items
	if c := items[0].Control; c != nil {
		if c.Symbol && c.Name == "*" {
			// unknown ignorable destinations are dropped; shppict carries the picture
			if len(items) < 2 || items[1].Control == nil || items[1].Control.Name != "shppict" {
				return
			}
			items = items[2:]
		} else {
			switch {
			case skipped[c.Name]:
				return
			case c.Name == "info":
				in.info(g)
				return
			case c.Name == "pict":
				in.picture(g)
				return
			case c.Name == "listtext" || c.Name == "pntext":
				if in.para.NumID == "" {
					in.para.NumID = c.Name
				}
				return
			}
		}
	}
	in.walk(items, st)
}

func (in *interpreter) walk(items []*Item, st state) {
	for _, it := range items {
		switch {
		case it.Group != nil:
			in.group(it.Group, st)
		case it.Control != nil:
			in.control(it.Control, &st)
		case it.Hex != nil:
			if in.skip > 0 {
				in.skip--
				continue
			}
			in.text(string(in.cm.DecodeByte(byte(*it.Hex))), st)
		case it.Text != nil:
			s := *it.Text
			for in.skip > 0 && s != "" {
				_, size := utf8.DecodeRuneInString(s)
				s = s[size:]
				in.skip--
			}
			in.text(s, st)
		}
	}
}

func (in *interpreter) control(c *Control, st *state) {
	if c.Symbol {
		switch c.Name {
		case `\`, "{", "}":
			in.text(c.Name, *st)
		case "~":
			in.text(" ", *st)
		case "_":
			in.text("-", *st)
		case "\n", "\r", "\r\n":
			in.endParagraph()
		}
		return
	}
	on := !c.HasParam || c.Param != 0
	switch c.Name {
	case "par":
		in.endParagraph()
	case "pard":
		in.numID = ""
	case "ls":
		in.numID = strconv.Itoa(c.Param)
	case "line":
		in.text("\n", *st)
	case "tab":
		in.text("\t", *st)
	case "b":
		st.bold = on
	case "i":
		st.italic = on
	case "plain":
		st.bold, st.italic = false, false
	case "uc":
		st.uc = c.Param
	case "u":
		r := c.Param
		if r < 0 {
			r += 65536
		}
		in.text(string(rune(r)), *st)
		in.skip = st.uc
	case "ansicpg":
		if cm, ok := codePages[c.Param]; ok {
			in.cm = cm
		}
	default:
		if s, ok := symbols[c.Name]; ok {
			in.text(s, *st)
		}
	}
}

func (in *interpreter) text(s string, st state) {
	if s == "" {
		return
	}
	runs := in.para.Runs
	if k := len(runs) - 1; k >= 0 && len(runs[k].Images) == 0 && runs[k].Bold == st.bold && runs[k].Italic == st.italic {
		runs[k].Text += s
		return
	}
	in.para.Runs = append(runs, document.Run{Text: s, Bold: st.bold, Italic: st.italic})
}

func (in *interpreter) endParagraph() {
	p := in.para
	if in.numID != "" {
		p.NumID = in.numID
	}
	in.paras = append(in.paras, p)
	in.para = document.Paragraph{}
}

// picture decodes a hex-encoded {\pict} group. Formats other than PNG and
// JPEG are kept by name only so the layout stage reports and skips them.
func (in *interpreter) picture(g *Group) {
	in.pictures++
	ext := "wmf"
	var data strings.Builder
	for _, it := range g.Items {
		switch {
		case it.Control != nil:
			switch it.Control.Name {
			case "pngblip":
				ext = "png"
			case "jpegblip":
				ext = "jpg"
			case "emfblip":
				ext = "emf"
			}
		case it.Text != nil:
			data.WriteString(strings.Join(strings.Fields(*it.Text), ""))
		}
	}
	img := document.Image{Name: fmt.Sprintf("picture%d.%s", in.pictures, ext)}
	if ext == "png" || ext == "jpg" {
		if b, err := hex.DecodeString(data.String()); err == nil {
			img.Data = b
		}
	}
	in.para.Runs = append(in.para.Runs, document.Run{Images: []document.Image{img}})
}

func (in *interpreter) info(g *Group) {
	for _, it := range g.Items {
		if it.Group == nil || len(it.Group.Items) == 0 || it.Group.Items[0].Control == nil {
			continue
		}
		value := strings.TrimSpace(in.plain(it.Group.Items[1:]))
		switch it.Group.Items[0].Control.Name {
		case "title":
			in.meta.Title = value
		case "author":
			in.meta.Author = value
		case "subject":
			in.meta.Subject = value
		case "keywords":
			for _, k := range strings.Split(value, ",") {
				if k = strings.TrimSpace(k); k != "" {
					in.meta.Keywords = append(in.meta.Keywords, k)
				}
			}
		}
	}
}

// plain flattens the text of an info field.
func (in *interpreter) plain(items []*Item) string {
	var b strings.Builder
	skip := false // fallback character after \u
	for _, it := range items {
		switch {
		case it.Text != nil:
			s := *it.Text
			if skip && s != "" {
				_, size := utf8.DecodeRuneInString(s)
				s = s[size:]
			}
			b.WriteString(s)
		case it.Hex != nil:
			if !skip {
				b.WriteRune(in.cm.DecodeByte(byte(*it.Hex)))
			}
		case it.Control != nil && it.Control.Name == "u":
			r := it.Control.Param
			if r < 0 {
				r += 65536
			}
			b.WriteRune(rune(r))
			skip = true
			continue
		}
		skip = false
	}
	return b.String()
}
