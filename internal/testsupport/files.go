package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFiles writes each relative path under dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()

	for name, contents := range files {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), contents)
	}
}

// SVG returns a minimal square SVG document of the given size whose body uses
// the provided fill colors.
func SVG(size int, fills ...string) string {
	body := ""
	for _, fill := range fills {
		body += `<path style="fill:` + fill + `;" d="M0 0h1v1z"/>`
	}
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 ` + strconv.Itoa(size) + ` ` + strconv.Itoa(size) + `">` + body + `</svg>`
}
