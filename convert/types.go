// Package convert wires extractors, the layout engine and a renderer into
// file conversions keyed by ConversionType.
package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/docflow/source"
)

// ConversionType identifies a source → target conversion.
type ConversionType int

const (
	DocxToPDF ConversionType = iota + 1
	MarkdownToPDF
	RTFToPDF
	HTMLToPDF
	TextToPDF
)

var typeNames = map[ConversionType]string{
	DocxToPDF:     "DOCX_TO_PDF",
	MarkdownToPDF: "MD_TO_PDF",
	RTFToPDF:      "RTF_TO_PDF",
	HTMLToPDF:     "HTML_TO_PDF",
	TextToPDF:     "TXT_TO_PDF",
}

// extension → conversion used when no type is given.
var byExtension = map[string]ConversionType{
	"docx":     DocxToPDF,
	"md":       MarkdownToPDF,
	"markdown": MarkdownToPDF,
	"rtf":      RTFToPDF,
	"html":     HTMLToPDF,
	"htm":      HTMLToPDF,
	"txt":      TextToPDF,
	"text":     TextToPDF,
}

func (t ConversionType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ConversionType(%d)", int(t))
}

// ParseType accepts names such as "DOCX_TO_PDF" or "docx-to-pdf".
func ParseType(s string) (ConversionType, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown conversion type %q", s)
}

// ForFile picks the conversion from the file extension.
func ForFile(path string) (ConversionType, error) {
	ext := source.Ext(path)
	if t, ok := byExtension[ext]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("no conversion for %q files", ext)
}

// Types lists the known conversions in declaration order.
func Types() []ConversionType {
	types := make([]ConversionType, 0, len(typeNames))
	for t := range typeNames {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Extensions lists the file extensions that select t, sorted.
func Extensions(t ConversionType) []string {
	var exts []string
	for ext, typ := range byExtension {
		if typ == t {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}
