// Package docx extracts paragraphs, run formatting, list membership, inline
// pictures and core properties from Office Open XML word-processing files.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/source"
)

const format = "docx"

// relationshipsXML is word/_rels/document.xml.rels.
type relationshipsXML struct {
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// stylesXML is word/styles.xml, reduced to id → display name.
type stylesXML struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

// corePropertiesXML is docProps/core.xml (Dublin Core).
type corePropertiesXML struct {
	Title    string `xml:"title"`
	Subject  string `xml:"subject"`
	Creator  string `xml:"creator"`
	Keywords string `xml:"keywords"`
}

// appPropertiesXML is docProps/app.xml.
type appPropertiesXML struct {
	Application string `xml:"Application"`
}

// Extractor implements source.Extractor for .docx files.
type Extractor struct{}

// New returns a DOCX extractor.
func New() *Extractor { return &Extractor{} }

// Extract opens the archive and returns its paragraphs in reading order.
func (Extractor) Extract(filename string) (*document.Document, error) {
	r, err := Open(filename)
	if err != nil {
		return nil, &source.ExtractionError{Format: format, Path: filename, Err: err}
	}
	defer r.Close()

	doc, err := r.Document()
	if err != nil {
		return nil, &source.ExtractionError{Format: format, Path: filename, Err: err}
	}
	doc.Meta = source.DefaultMeta(doc.Meta, filename)
	return doc, nil
}

// Reader provides access to the parts of one DOCX archive.
type Reader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
	rels      map[string]string // relationship id → part name
	styles    map[string]string // style id → style name
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	r := &Reader{zipReader: zr, files: map[string]*zip.File{}}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}
	if err := r.validate(); err != nil {
		zr.Close()
		return nil, err
	}
	if err := r.parseRelationships(); err != nil {
		zr.Close()
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	// styles are optional
	r.parseStyles()
	return r, nil
}

// Close releases the archive.
func (r *Reader) Close() error {
	if r.zipReader != nil {
		err := r.zipReader.Close()
		r.zipReader = nil
		return err
	}
	return nil
}

func (r *Reader) validate() error {
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		if _, ok := r.files[name]; !ok {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

func (r *Reader) getFileContent(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) parseRelationships() error {
	r.rels = map[string]string{}
	data, err := r.getFileContent("word/_rels/document.xml.rels")
	if err != nil {
		// relationships are optional
		return nil
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationships {
		if strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		r.rels[rel.ID] = partName(rel.Target)
	}
	return nil
}

// partName resolves a relationship target relative to word/.
func partName(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join("word", target))
}

func (r *Reader) parseStyles() {
	r.styles = map[string]string{}
	data, err := r.getFileContent("word/styles.xml")
	if err != nil {
		return
	}
	var styles stylesXML
	if xml.Unmarshal(data, &styles) != nil {
		return
	}
	for _, s := range styles.Styles {
		r.styles[s.ID] = s.Name.Val
	}
}

// styleName maps a paragraph style id to a compact name such as "heading1".
func (r *Reader) styleName(id string) string {
	if id == "" {
		return ""
	}
	if name, ok := r.styles[id]; ok && name != "" {
		return strings.ReplaceAll(name, " ", "")
	}
	return id
}

// Meta reads core and application properties; missing parts yield empty fields.
func (r *Reader) Meta() document.Meta {
	var meta document.Meta
	if data, err := r.getFileContent("docProps/core.xml"); err == nil {
		var core corePropertiesXML
		if xml.Unmarshal(data, &core) == nil {
			meta.Title = strings.TrimSpace(core.Title)
			meta.Author = strings.TrimSpace(core.Creator)
			meta.Subject = strings.TrimSpace(core.Subject)
			for _, kw := range strings.Split(core.Keywords, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		}
	}
	if data, err := r.getFileContent("docProps/app.xml"); err == nil {
		var app appPropertiesXML
		if xml.Unmarshal(data, &app) == nil {
			meta.Creator = strings.TrimSpace(app.Application)
		}
	}
	return meta
}

// Document parses word/document.xml into paragraphs.
func (r *Reader) Document() (*document.Document, error) {
	f, ok := r.files["word/document.xml"]
	if !ok {
		return nil, fmt.Errorf("file not found: word/document.xml")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	paras, err := r.parseBody(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &document.Document{Meta: r.Meta(), Paragraphs: paras}, nil
}

// image loads the media part behind a relationship id.
func (r *Reader) image(relID string) (document.Image, bool) {
	name, ok := r.rels[relID]
	if !ok {
		return document.Image{}, false
	}
	data, err := r.getFileContent(name)
	if err != nil {
		return document.Image{}, false
	}
	return document.Image{Name: path.Base(name), Data: data}, true
}
