package convert

import (
	"github.com/ByLCY/docflow/source"
	"github.com/ByLCY/docflow/source/docx"
	"github.com/ByLCY/docflow/source/htmldoc"
	"github.com/ByLCY/docflow/source/markdown"
	"github.com/ByLCY/docflow/source/rtf"
	"github.com/ByLCY/docflow/source/text"
)

// Converter pairs a source extractor with the extension of the file it produces.
type Converter struct {
	Extractor source.Extractor
	Target    string
}

// Registry maps each conversion to its converter.
type Registry map[ConversionType]Converter

// DefaultRegistry returns the built-in conversions, all rendered to PDF.
func DefaultRegistry() Registry {
	return Registry{
		DocxToPDF:     {Extractor: docx.New(), Target: "pdf"},
		MarkdownToPDF: {Extractor: markdown.New(), Target: "pdf"},
		RTFToPDF:      {Extractor: rtf.New(), Target: "pdf"},
		HTMLToPDF:     {Extractor: htmldoc.New(), Target: "pdf"},
		TextToPDF:     {Extractor: text.New(), Target: "pdf"},
	}
}
