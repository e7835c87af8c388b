package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"orxport/internal/services"
	"orxport/internal/testsupport"
)

const catalogManifest = `
palette skin a=#ffcc00
palette dark a=#553311
palette light a=#ffeedd
colormap dark src=skin dst=dark short=dark
colormap light src=skin dst=light short=light
class people cat=people
emoji short=smile src=smile.svg code=#1f600 cat=smileys root=smile
emoji short=hand%C class=people src=hand.svg root=hand color=dark light
emoji short=fist_r class=people src=fist.svg root=fist morph=r
emoji short=fist_l%C class=people src=fist_l.svg root=fist morph=l color=dark
`

func TestWriteJSON(t *testing.T) {
	m := testsupport.LoadManifest(t, catalogManifest, nil)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, m.Emoji[:1]); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	want := `[
    {
        "cat": "smileys",
        "code": [
            128512
        ],
        "root": "smile",
        "short": "smile",
        "src": "smile.svg"
    }
]
`
	if buf.String() != want {
		t.Fatalf("unexpected json:\n%s", buf.String())
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestWriteYAMLKeepsDeclarationOrder(t *testing.T) {
	m := testsupport.LoadManifest(t, catalogManifest, nil)
	var buf bytes.Buffer
	if err := WriteYAML(&buf, m.Emoji[:1]); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	out := buf.String()
	short := strings.Index(out, "short: smile")
	src := strings.Index(out, "src: smile.svg")
	if short < 0 || src < 0 || short > src {
		t.Fatalf("expected declaration order, got:\n%s", out)
	}
	if !strings.Contains(out, "- 128512") {
		t.Fatalf("expected codepoints as a list, got:\n%s", out)
	}
}

func TestBuildWeb(t *testing.T) {
	m := testsupport.LoadManifest(t, catalogManifest, nil)
	web, err := BuildWeb(m.Emoji)
	if err != nil {
		t.Fatalf("BuildWeb: %v", err)
	}
	wantCats := map[string][]string{
		"smileys": {"smile"},
		"people":  {"hand", "fist"},
	}
	if !reflect.DeepEqual(web.Cats, wantCats) {
		t.Fatalf("cats = %v, want %v", web.Cats, wantCats)
	}
	wantRoots := map[string][]string{
		"smile": nil,
		"hand":  {"dark", "light"},
		"fist":  {"r", "l_dark"},
	}
	if !reflect.DeepEqual(web.Roots, wantRoots) {
		t.Fatalf("roots = %v, want %v", web.Roots, wantRoots)
	}

	var buf bytes.Buffer
	if err := WriteWeb(&buf, web); err != nil {
		t.Fatalf("WriteWeb: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["roots"]["smile"] != nil {
		t.Fatalf("expected null for a root without variants, got %v", decoded["roots"]["smile"])
	}
}

func TestBuildWebRequiresRootAndCategory(t *testing.T) {
	tests := []struct {
		contents string
		message  string
	}{
		{"palette p a=#fff\ncolormap c src=p dst=p\nemoji short=a src=a.svg cat=people color=c\n", "no root defined for emoji a"},
		{"emoji short=a src=a.svg root=a\n", "no category defined for emoji a"},
	}
	for _, tt := range tests {
		m := testsupport.LoadManifest(t, tt.contents, nil)
		_, err := BuildWeb(m.Emoji)
		if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), tt.message) {
			t.Fatalf("expected %q, got %v", tt.message, err)
		}
	}
}

func TestCategories(t *testing.T) {
	m := testsupport.LoadManifest(t, catalogManifest+"emoji short=misc src=misc.svg\n", nil)
	got := Categories(m.Emoji)
	want := []Category{
		{Name: "", Title: "Uncategorized", Count: 1},
		{Name: "people", Title: "People", Count: 4},
		{Name: "smileys", Title: "Smileys", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories = %+v, want %+v", got, want)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emoji.json")
	m := testsupport.LoadManifest(t, catalogManifest, nil)
	if err := WriteFile(path, func(w io.Writer) error { return WriteJSON(w, m.Emoji) }); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(m.Emoji) {
		t.Fatalf("expected %d records, got %d", len(m.Emoji), len(decoded))
	}
}
