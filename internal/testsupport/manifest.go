package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"orxport/internal/manifest"
)

// LoadManifest writes contents as manifest.orx in a temp directory, together
// with any extra files, and compiles it.
func LoadManifest(t testing.TB, contents string, extra map[string]string) *manifest.Manifest {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, extra)
	path := filepath.Join(dir, "manifest.orx")
	WriteFile(t, path, contents)
	m, err := manifest.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	return m
}

// Emoji compiles a manifest and returns the emoji with the given shortcode.
func Emoji(t testing.TB, m *manifest.Manifest, short string) *manifest.Emoji {
	t.Helper()

	for _, e := range m.Emoji {
		if e.Short() == short {
			return e
		}
	}
	t.Fatalf("emoji %q not found in manifest", short)
	return nil
}
