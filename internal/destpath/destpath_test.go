package destpath_test

import (
	"errors"
	"path/filepath"
	"testing"

	"orxport/internal/destpath"
	"orxport/internal/testsupport"
)

const pathManifest = `
palette base a=#fff
palette night a=#000
colormap dark src=base dst=night short=dark code=#1f3ff
emoji short=wave src=hands/wave.svg code=#1f44b cat=people color=dark
emoji short=flag src=flag.svg code=!
emoji src=nameless.svg cat=misc
emoji short=plain src=plain.svg code=#1f600 #fe0f
`

func mustFormat(t *testing.T, name string) destpath.Format {
	t.Helper()
	f, err := destpath.ParseFormat(name)
	if err != nil {
		t.Fatalf("ParseFormat(%q): %v", name, err)
	}
	return f
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		family destpath.Family
		size   int
		ext    string
		vector bool
	}{
		{"svg", destpath.FamilySVG, 0, ".svg", true},
		{"svgo", destpath.FamilySVGO, 0, ".svg", true},
		{"png-64", destpath.FamilyPNG, 64, ".png", false},
		{"pngc-128", destpath.FamilyPNGC, 128, ".png", false},
		{"webp-32", destpath.FamilyWebP, 32, ".webp", false},
		{"avif-512", destpath.FamilyAVIF, 512, ".avif", false},
		{"flif-16", destpath.FamilyFLIF, 16, ".flif", false},
	}
	for _, tt := range tests {
		f := mustFormat(t, tt.in)
		if f.Family != tt.family || f.Size != tt.size || f.Extension() != tt.ext || f.IsVector() != tt.vector {
			t.Fatalf("%s: unexpected format %+v", tt.in, f)
		}
	}

	for _, bad := range []string{"", "jpg-64", "png", "png-", "png-abc", "png-0", "svg-32", "gif"} {
		if _, err := destpath.ParseFormat(bad); !errors.Is(err, destpath.ErrInvalidFormat) {
			t.Fatalf("ParseFormat(%q) error = %v, want ErrInvalidFormat", bad, err)
		}
	}
}

func TestParseFormatsDeduplicates(t *testing.T) {
	formats, err := destpath.ParseFormats([]string{"svg", "png-64", "svg"})
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	if len(formats) != 2 {
		t.Fatalf("expected 2 formats, got %v", formats)
	}
	if _, err := destpath.ParseFormats([]string{"svg", "tiff-1", "bmp"}); !errors.Is(err, destpath.ErrInvalidFormat) {
		t.Fatalf("expected joined invalid format error, got %v", err)
	}
}

func TestResolveCodes(t *testing.T) {
	m := testsupport.LoadManifest(t, pathManifest, nil)
	wave := testsupport.Emoji(t, m, "wave")
	plain := testsupport.Emoji(t, m, "plain")

	tests := []struct {
		template string
		emoji    string
		format   string
		want     string
	}{
		{"%f/%s", "wave", "svg", "svg/wave.svg"},
		{"%i/%z/%s%C", "wave", "png-64", "png/64/wave_dark.png"},
		{"%i/%z/%s%C", "plain", "svgo", "svgo/0/plain.svg"},
		{"%d/%c/%u", "wave", "webp-32", "hands/dark/1f44b.webp"},
		{"%(cat)/%s-%s", "wave", "avif-16", "people/wave-wave.avif"},
		{"by-code/%u", "plain", "flif-8", "by-code/1f600-fe0f.flif"},
		{"%s%U", "plain", "pngc-32", "plain1f600-fe0f.png"},
		{"%(code)", "plain", "svg", "1f600-fe0f.svg"},
		{"%d/%s", "plain", "svg", "./plain.svg"},
		{"100%%", "plain", "svg", ""},
	}
	for _, tt := range tests {
		e := wave
		if tt.emoji == "plain" {
			e = plain
		}
		got, err := destpath.Resolve(tt.template, e, mustFormat(t, tt.format))
		if tt.want == "" {
			if !errors.Is(err, destpath.ErrUnresolved) {
				t.Fatalf("%s: expected ErrUnresolved, got %q, %v", tt.template, got, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: Resolve: %v", tt.template, err)
		}
		if got != filepath.FromSlash(tt.want) && got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.template, got, tt.want)
		}
	}
}

func TestResolveIsStable(t *testing.T) {
	m := testsupport.LoadManifest(t, pathManifest, nil)
	wave := testsupport.Emoji(t, m, "wave")
	format := mustFormat(t, "png-64")
	first, err := destpath.Resolve("%f/%(cat)/%s", wave, format)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := destpath.Resolve("%f/%(cat)/%s", wave, format)
		if err != nil || again != first {
			t.Fatalf("resolution changed between calls: %q vs %q (%v)", first, again, err)
		}
	}
}

func TestResolveFailures(t *testing.T) {
	m := testsupport.LoadManifest(t, pathManifest, nil)
	nameless := m.Emoji[2]
	flag := testsupport.Emoji(t, m, "flag")
	plain := testsupport.Emoji(t, m, "plain")
	svg := mustFormat(t, "svg")

	if _, err := destpath.Resolve("%u", flag, svg); !destpath.IsFiltered(err) {
		t.Fatalf("expected filtered signal, got %v", err)
	}
	if _, err := destpath.Resolve("%u", flag, svg); errors.Is(err, destpath.ErrUnresolved) {
		t.Fatalf("filtered signal must not look like a resolution failure: %v", err)
	}
	if got, err := destpath.Resolve("%s%U", flag, svg); err != nil || got != "flag.svg" {
		t.Fatalf("%%U should resolve empty for undefined code, got %q, %v", got, err)
	}

	hard := map[string]string{
		"no shortcode": "%s",
		"no color":     "%c",
		"no property":  "%(desc)",
		"unknown code": "%q",
	}
	for name, tmpl := range hard {
		e := plain
		if name == "no shortcode" {
			e = nameless
		}
		_, err := destpath.Resolve(tmpl, e, svg)
		if !errors.Is(err, destpath.ErrUnresolved) || destpath.IsFiltered(err) {
			t.Fatalf("%s: expected ErrUnresolved, got %v", name, err)
		}
	}

	if _, err := destpath.Resolve("%u/%(desc)", flag, svg); !errors.Is(err, destpath.ErrUnresolved) {
		t.Fatalf("hard failure should win over filtered signal, got %v", err)
	}
	if _, err := destpath.Resolve("%u", nameless, svg); !errors.Is(err, destpath.ErrUnresolved) {
		t.Fatalf("missing code should be a hard failure, got %v", err)
	}
	if _, err := destpath.Resolve("%s", plain, destpath.Format{Name: "tiff-8", Family: "tiff"}); !errors.Is(err, destpath.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}
