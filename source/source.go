// Package source defines the extractor contract shared by all input formats.
// An extractor turns one source file into a document.Document; the layout
// engine never sees format-specific structures.
package source

import (
	"fmt"
	"os"

	"github.com/ByLCY/docflow/document"
)

// Extractor reads a source file into the paragraph model.
type Extractor interface {
	Extract(path string) (*document.Document, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (*document.Document, error)

// Extract calls f(path).
func (f ExtractorFunc) Extract(path string) (*document.Document, error) { return f(path) }

// ExtractionError reports that a source file could not be read or parsed.
// It is fatal for the conversion of that file.
type ExtractionError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ReadFile reads a whole source file, wrapping failures as ExtractionError.
func ReadFile(format, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Format: format, Path: path, Err: err}
	}
	return data, nil
}

// DefaultMeta fills an empty title from the file name so every output carries one.
func DefaultMeta(meta document.Meta, path string) document.Meta {
	if meta.Title == "" {
		meta.Title = BaseName(path)
	}
	if meta.Creator == "" {
		meta.Creator = "docflow"
	}
	return meta
}
