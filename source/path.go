package source

import (
	"os"
	"path/filepath"
	"strings"
)

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ext returns the lower-case extension without the dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ResolveAsset resolves a reference found inside a source document relative to
// the document's directory and reads it. Absolute paths are used as is.
func ResolveAsset(docPath, ref string) ([]byte, string, error) {
	ref = strings.TrimPrefix(ref, "file://")
	p := ref
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(docPath), filepath.FromSlash(ref))
	}
	data, err := os.ReadFile(p)
	return data, filepath.Base(p), err
}
