package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/docflow/source"
)

// OutputPath returns <dir>/<base>.<ext>, where dir defaults to the source's
// directory. With unique set, existing files (and names in taken) are skipped
// by appending -1, -2, ...
func OutputPath(src, outDir, ext string, unique bool, taken func(string) bool) string {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := source.BaseName(src)
	p := filepath.Join(dir, base+"."+ext)
	if !unique {
		return p
	}
	for i := 1; exists(p) || (taken != nil && taken(p)); i++ {
		p = filepath.Join(dir, fmt.Sprintf("%s-%d.%s", base, i, ext))
	}
	return p
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
