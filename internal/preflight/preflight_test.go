package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"orxport/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory(t *testing.T) {
	result := CheckReadableDirectory("input", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Directories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(cfg)
	// input, output, cache and scratch
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_SkipsDisabledCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	cfg.Paths.ScratchDir = ""

	results := RunAll(cfg)
	if len(results) != 2 {
		t.Fatalf("expected input and output checks only, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 2 {
		t.Fatalf("expected missing directories to fail, got %+v", failed)
	}
}

func TestRequirements(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	tests := []struct {
		name    string
		formats []string
		license bool
		want    []string
	}{
		{name: "svg only", formats: []string{"svg"}, license: true, want: nil},
		{name: "svgo", formats: []string{"svgo"}, license: true, want: []string{"svgcleaner"}},
		{name: "png", formats: []string{"png-32"}, license: true, want: []string{"inkscape", "exiftool"}},
		{
			name:    "mixed",
			formats: []string{"pngc-32", "webp-64", "pngc-64", "bogus"},
			license: true,
			want:    []string{"inkscape", "oxipng", "cwebp", "exiftool"},
		},
		{name: "webp without exif", formats: []string{"webp-16"}, license: true, want: []string{"inkscape", "cwebp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Export.License = tt.license
			reqs := Requirements(cfg, tt.formats)
			var names []string
			for _, req := range reqs {
				names = append(names, req.Name)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("requirements = %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("requirements = %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestRequirementsExiftoolOptionalWithoutLicense(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Export.License = false
	cfg.Export.Renderer = "imagemagick"

	reqs := Requirements(cfg, []string{"png-32"})
	if len(reqs) != 2 {
		t.Fatalf("expected rasterizer and exiftool, got %+v", reqs)
	}
	if reqs[0].Command != cfg.Tools.Convert {
		t.Fatalf("expected imagemagick to use %q, got %q", cfg.Tools.Convert, reqs[0].Command)
	}
	if !reqs[1].Optional {
		t.Fatal("expected exiftool to be optional when license embedding is off")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFormats("pngc-32"), testsupport.WithStubbedBinaries("inkscape", "oxipng"))
	cfg.Tools.Exiftool = "clearly-not-present-exiftool"

	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %+v", statuses)
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("expected stubbed tools to be available: %+v", statuses)
	}
	if statuses[2].Available {
		t.Fatalf("expected exiftool to be missing: %+v", statuses[2])
	}
}
