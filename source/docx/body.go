package docx

import (
	"encoding/xml"
	"io"

	"github.com/ByLCY/docflow/document"
)

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// paragraphBuilder collects one w:p while the body is streamed.
type paragraphBuilder struct {
	para document.Paragraph
	run  *document.Run // open w:r, nil outside runs
}

// parseBody streams document.xml so that text, tabs, breaks and pictures keep
// their document order. Paragraphs nested in tables or text boxes are emitted
// as ordinary paragraphs.
func (r *Reader) parseBody(in io.Reader) ([]document.Paragraph, error) {
	dec := xml.NewDecoder(in)
	var (
		out    []document.Paragraph
		stack  []*paragraphBuilder
		inText bool
	)
	current := func() *paragraphBuilder {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			// mc:Fallback repeats the content of mc:Choice
			if t.Name.Local == "Fallback" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			p := current()
			if t.Name.Local == "blip" {
				if p != nil && p.run != nil {
					r.addImage(p.run, attr(t, nsRels, "embed"))
				}
				continue
			}
			if t.Name.Space != nsMain {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &paragraphBuilder{})
			case "pStyle":
				if p != nil && p.run == nil {
					p.para.Style = r.styleName(attr(t, nsMain, "val"))
				}
			case "numId":
				if p != nil && p.run == nil {
					if id := attr(t, nsMain, "val"); id != "" && id != "0" {
						p.para.NumID = id
					}
				}
			case "r":
				if p != nil {
					p.run = &document.Run{}
				}
			case "b":
				if p != nil && p.run != nil {
					p.run.Bold = onOff(t)
				}
			case "i":
				if p != nil && p.run != nil {
					p.run.Italic = onOff(t)
				}
			case "t":
				inText = p != nil && p.run != nil
			case "tab":
				if p != nil && p.run != nil {
					p.run.Text += "\t"
				}
			case "br", "cr":
				if p != nil && p.run != nil {
					p.run.Text += "\n"
				}
			}
		case xml.CharData:
			if inText {
				if p := current(); p != nil && p.run != nil {
					p.run.Text += string(t)
				}
			}
		case xml.EndElement:
			if t.Name.Space != nsMain {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if p := current(); p != nil && p.run != nil {
					if p.run.Text != "" || len(p.run.Images) > 0 {
						p.para.Runs = append(p.para.Runs, *p.run)
					}
					p.run = nil
				}
			case "p":
				if p := current(); p != nil {
					stack = stack[:len(stack)-1]
					out = append(out, p.para)
				}
			}
		}
	}
	return out, nil
}

func (r *Reader) addImage(run *document.Run, relID string) {
	if relID == "" {
		return
	}
	img, ok := r.image(relID)
	if !ok {
		// kept without data so the layout stage reports and skips it
		img = document.Image{Name: relID}
	}
	run.Images = append(run.Images, img)
}

func attr(t xml.StartElement, space, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local && (a.Name.Space == space || a.Name.Space == "") {
			return a.Value
		}
	}
	return ""
}

// onOff reads a toggle property such as <w:b/> or <w:b w:val="false"/>.
func onOff(t xml.StartElement) bool {
	switch attr(t, nsMain, "val") {
	case "false", "0", "off", "none":
		return false
	default:
		return true
	}
}
