// Package text extracts paragraphs from plain-text files. Blank lines
// separate paragraphs; the lines of one paragraph are reflowed by the layout
// engine. A byte-order mark selects UTF-8 or UTF-16; input without one that is
// not valid UTF-8 is read as Windows-1252.
package text

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/source"
)

const format = "txt"

// Extractor implements source.Extractor for .txt files.
type Extractor struct{}

// New returns a plain-text extractor.
func New() *Extractor { return &Extractor{} }

// Extract reads and splits the file.
func (Extractor) Extract(path string) (*document.Document, error) {
	src, err := source.ReadFile(format, path)
	if err != nil {
		return nil, err
	}
	paras, err := Decode(src)
	if err != nil {
		return nil, &source.ExtractionError{Format: format, Path: path, Err: err}
	}
	return &document.Document{Meta: source.DefaultMeta(document.Meta{}, path), Paragraphs: paras}, nil
}

// Decode converts raw bytes into paragraphs.
func Decode(src []byte) ([]document.Paragraph, error) {
	var fallback encoding.Encoding = unicode.UTF8
	if !utf8.Valid(src) && !hasBOM(src) {
		fallback = charmap.Windows1252
	}
	r := transform.NewReader(bytes.NewReader(src), unicode.BOMOverride(fallback.NewDecoder()))
	return split(r)
}

func hasBOM(src []byte) bool {
	return bytes.HasPrefix(src, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(src, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(src, []byte{0xFF, 0xFE})
}

func split(r io.Reader) ([]document.Paragraph, error) {
	var (
		paras []document.Paragraph
		lines []string
	)
	flush := func() {
		if len(lines) > 0 {
			paras = append(paras, document.Paragraph{Runs: []document.Run{{Text: strings.Join(lines, "\n")}}})
			lines = nil
		}
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	flush()
	return paras, nil
}
