package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"orxport/internal/services"
)

func writeManifest(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "manifest.orx")
}

func loadManifest(t *testing.T, contents string) *Manifest {
	t.Helper()
	m, err := Load(context.Background(), writeManifest(t, map[string]string{"manifest.orx": contents}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

const skinManifest = `
define base_skin #ffcc00
palette skin a=$base_skin b=#aa8800
palette dark a=#553311 b=#221100
palette light a=#ffeedd b=#aa8800
colormap dark src=skin dst=dark short=dark code=#1f3ff desc=dark skin tone bundle=skin-dark
colormap light src=skin dst=light short=light code=#1f3fb desc=light skin tone
colormap plain src=skin dst=skin short=! code=!

class people cat=people bundle=core
class hand people desc=hand

emoji short=wave%C class=hand src=hand/wave.svg code=#1f44b %U color=dark light plain
	root = wave
`

func TestLoadExpandsColorsAndSubstitutesTokens(t *testing.T) {
	m := loadManifest(t, skinManifest)
	if len(m.Emoji) != 3 {
		t.Fatalf("expected 3 emoji, got %d", len(m.Emoji))
	}

	dark := m.Emoji[0]
	if got := dark.Short(); got != "wave_dark" {
		t.Fatalf("unexpected shortcode %q", got)
	}
	code, ok := dark.Codepoints("code")
	if !ok || !reflect.DeepEqual(code, Codepoints{0x1f44b, 0x200d, 0x1f3ff}) {
		t.Fatalf("unexpected code %v (ok=%v)", code, ok)
	}
	if desc, _ := dark.String("desc"); desc != "hand (dark skin tone)" {
		t.Fatalf("unexpected desc %q", desc)
	}
	if bundle, _ := dark.String("bundle"); bundle != "skin-dark" {
		t.Fatalf("expected colormap bundle, got %q", bundle)
	}
	if cat, _ := dark.String("cat"); cat != "people" {
		t.Fatalf("expected inherited cat, got %q", cat)
	}
	if color, _ := dark.Color(); color != "dark" {
		t.Fatalf("unexpected color %q", color)
	}

	light := m.Emoji[1]
	if bundle, _ := light.String("bundle"); bundle != "core" {
		t.Fatalf("expected class bundle kept when colormap has none, got %q", bundle)
	}

	plain := m.Emoji[2]
	if plain.Short() != "wave" {
		t.Fatalf("expected empty %%C substitution, got %q", plain.Short())
	}
	code, _ = plain.Codepoints("code")
	if !reflect.DeepEqual(code, Codepoints{0x1f44b}) {
		t.Fatalf("expected empty %%U substitution, got %v", code)
	}
	if desc, _ := plain.String("desc"); desc != "hand" {
		t.Fatalf("empty colormap desc must not add a suffix, got %q", desc)
	}

	src, dst, ok := m.ColorPalettes(dark)
	if !ok || src.Name != "skin" || dst.Name != "dark" {
		t.Fatalf("unexpected palettes %v %v", src, dst)
	}
	if a, _ := src.Color("a"); a != "#ffcc00" {
		t.Fatalf("expected constant substituted into palette, got %q", a)
	}
}

func TestRootDefaultsToShortcode(t *testing.T) {
	m := loadManifest(t, `
emoji short=grinning src=a.svg code=#1f600
emoji short=smile src=b.svg morph=open
emoji short=joy src=c.svg root=laugh
`)
	if root, _ := m.Emoji[0].String("root"); root != "grinning" {
		t.Fatalf("expected root default, got %q", root)
	}
	if m.Emoji[1].Has("root") {
		t.Fatal("morph should suppress root default")
	}
	if root, _ := m.Emoji[2].String("root"); root != "laugh" {
		t.Fatalf("explicit root overwritten: %q", root)
	}
}

func TestUndefinedCodepointsMayRepeat(t *testing.T) {
	m := loadManifest(t, `
emoji short=a src=a.svg code=!
emoji short=b src=b.svg code = !
emoji short=c src=c.svg code=#E000 !
`)
	for _, e := range m.Emoji {
		if !e.IsUndefined("code") {
			t.Fatalf("%s: expected undefined code", e.Short())
		}
		if _, ok := e.Codepoints("code"); ok {
			t.Fatalf("%s: undefined code must not read as codepoints", e.Short())
		}
	}
}

func TestAttributeReferences(t *testing.T) {
	m := loadManifest(t, `
emoji short=thumbsup src=%(dir)/%(short).svg dir=%(cat)/hands cat=people desc=%(short) is %(short)
`)
	e := m.Emoji[0]
	if src := e.Src(); src != "people/hands/thumbsup.svg" {
		t.Fatalf("unexpected src %q", src)
	}
	if desc, _ := e.String("desc"); desc != "thumbsup is thumbsup" {
		t.Fatalf("unexpected desc %q", desc)
	}
}

func TestClassInheritanceLaterParentWins(t *testing.T) {
	m := loadManifest(t, `
class a cat=one desc=first
class b cat=two
class c a b
class d a b cat=own
emoji short=x src=x.svg class=c
emoji short=y src=y.svg class=d
`)
	tests := []struct {
		index int
		cat   string
	}{
		{0, "two"},
		{1, "own"},
	}
	for _, tt := range tests {
		e := m.Emoji[tt.index]
		if cat, _ := e.String("cat"); cat != tt.cat {
			t.Fatalf("%s: cat = %q, want %q", e.Short(), cat, tt.cat)
		}
		if desc, _ := e.String("desc"); desc != "first" {
			t.Fatalf("%s: attributes of the earlier parent must survive, desc = %q", e.Short(), desc)
		}
	}
}

func TestEmojiAttributeOrder(t *testing.T) {
	m := loadManifest(t, `
class base cat=smileys src=default.svg
emoji short=a class=base src=a.svg
`)
	want := []string{"cat", "src", "short", "class", "root"}
	if got := m.Emoji[0].Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected key order %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     error
		contains string
	}{
		{"duplicate shortcode", "emoji short=a src=a.svg\nemoji short=a src=b.svg", ErrDuplicate, "shortcode a"},
		{"duplicate codepoint", "emoji short=a src=a.svg code=#1f600\nemoji short=b src=b.svg code=128512", ErrDuplicate, "GRINNING FACE"},
		{"undefined colormap", "palette p a=#fff\ncolormap dark src=p dst=p\nemoji short=a src=a.svg color=drk", ErrUndefined, `did you mean "dark"?`},
		{"redefined constant", "define a 1\ndefine a 2", ErrAlreadyDefined, "constant a"},
		{"define kwargs", "define a b=c", ErrInvalidArgument, "define"},
		{"define without value", "define a", ErrMissingArgument, "define"},
		{"undefined constant", "define skin #fff\npalette p a=$skn", ErrUndefined, `did you mean "skin"?`},
		{"class recursion", "class a class=b", ErrInvalidArgument, "recursion"},
		{"undefined parent", "class a missing", ErrUndefined, "parent class missing"},
		{"missing src", "emoji short=a", ErrMissingArgument, "src"},
		{"undefined class", "emoji short=a src=a.svg class=nope", ErrUndefined, "class nope"},
		{"colormap missing dst", "palette p a=#fff\ncolormap c src=p", ErrMissingArgument, "dst"},
		{"colormap undefined palette", "palette p a=#fff\ncolormap c src=p dst=q", ErrUndefined, "target palette q"},
		{"palette duplicate", "palette p a=#fff\npalette p a=#000", ErrAlreadyDefined, "palette p"},
		{"palette multiple ids", "palette p q a=#fff", ErrInvalidArgument, "multiple ids"},
		{"token without color", "emoji short=a%c src=a.svg", ErrInvalidValue, "%c without colormap"},
		{"colormap missing code", "palette p a=#fff\ncolormap c src=p dst=p short=c\nemoji short=a src=a.svg code=%u color=c", ErrUndefined, "codepoint for colormap c"},
		{"bad codepoint", "emoji short=a src=a.svg code=#zz", ErrInvalidValue, "expected a number: #zz"},
		{"undefined property", "emoji short=a src=%(dir)/a.svg", ErrUndefined, "property dir"},
		{"unterminated property", "emoji short=a src=%(dir", ErrInvalidValue, "no matching parenthesis"},
		{"cyclic property", "emoji short=a src=%(x) x=%(y) y=%(x)", ErrInvalidValue, "cyclic property reference"},
		{"unknown statement", "emojii short=a src=a.svg", ErrUnknownStatement, `did you mean "emoji"?`},
		{"unknown license", "license pdf=terms.pdf", ErrInvalidArgument, "license kind pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeManifest(t, map[string]string{"manifest.orx": tt.manifest}))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected %q in %q", tt.contains, err.Error())
			}
			var stmt *StatementError
			if !errors.As(err, &stmt) || stmt.File != "manifest.orx" {
				t.Fatalf("expected statement error annotation, got %v", err)
			}
		})
	}
}

func TestStatementErrorLocationFollowsIncludes(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx":    "# root\ninclude parts/faces.orx\n",
		"parts/faces.orx": "emoji short=a src=a.svg\n\nemoji short=a\n    src=b.svg\n",
	})
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected duplicate shortcode error")
	}
	file, line, ok := Location(err)
	if !ok || file != "parts/faces.orx" || line != 3 {
		t.Fatalf("unexpected location %s:%d (ok=%v): %v", file, line, ok, err)
	}
	if !strings.Contains(err.Error(), "in manifest file manifest.orx at line 2") {
		t.Fatalf("expected outer include location in %q", err.Error())
	}
}

func TestIncludeSharesDefinitions(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx": "include palettes.orx\nemoji short=a src=a.svg color=dark\n",
		"palettes.orx": "palette base a=#fff\npalette night a=#000\ncolormap dark src=base dst=night short=dark\n",
	})
	m, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Emoji) != 1 || m.Emoji[0].Short() != "a" {
		t.Fatalf("unexpected emoji %v", m.Emoji)
	}
}

func TestIncludeCycleRejected(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx": "include a.orx\n",
		"a.orx":        "include manifest.orx\n",
	})
	_, err := Load(context.Background(), path)
	if !errors.Is(err, ErrIncludeCycle) {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestMissingIncludeIsNotFound(t *testing.T) {
	path := writeManifest(t, map[string]string{"manifest.orx": "include nope.orx\n"})
	_, err := Load(context.Background(), path)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLicenses(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx":      "license svg=license/svg.xml exif=license/exif.json\n",
		"license/svg.xml":   "<rdf>CC BY-NC-SA</rdf>\n",
		"license/exif.json": `{"XMP-dc:Rights": "CC BY-NC-SA 4.0", "Artist": "Mutant", "XMP-dc:Subject": ["emoji", "art"]}`,
	})
	m, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	svg, ok := m.License(LicenseSVG)
	if !ok || svg.Text != "<rdf>CC BY-NC-SA</rdf>\n" {
		t.Fatalf("unexpected svg license %+v", svg)
	}
	exif, ok := m.License(LicenseEXIF)
	if !ok {
		t.Fatal("expected exif license")
	}
	want := []MetadataField{
		{Tag: "Artist", Value: "Mutant"},
		{Tag: "XMP-dc:Rights", Value: "CC BY-NC-SA 4.0"},
		{Tag: "XMP-dc:Subject", Value: "emoji"},
		{Tag: "XMP-dc:Subject", Value: "art"},
	}
	if !reflect.DeepEqual(exif.Fields, want) {
		t.Fatalf("unexpected exif fields %+v", exif.Fields)
	}
}

func TestLicenseYAMLAndPNGAlias(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx": "license png=meta.yaml\n",
		"meta.yaml":    "Copyright: Dzuk\nYear: 2024\n",
	})
	m, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	exif, ok := m.License(LicenseEXIF)
	if !ok || len(exif.Fields) != 2 || exif.Fields[1].Value != "2024" {
		t.Fatalf("unexpected exif license %+v", exif)
	}
}

func TestLicenseParseFailure(t *testing.T) {
	path := writeManifest(t, map[string]string{
		"manifest.orx": "license exif=meta.json\n",
		"meta.json":    "[1, 2",
	})
	if _, err := Load(context.Background(), path); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeManifest(t, map[string]string{"manifest.orx": "emoji short=a src=a.svg\n"})
	if _, err := Load(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEmojiMarshalJSON(t *testing.T) {
	m := loadManifest(t, "emoji short=a src=a.svg code=#1f600 desc=smile\nemoji short=b src=b.svg code=!")
	data, err := m.Emoji[0].MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got, want := string(data), `{"code":[128512],"desc":"smile","root":"a","short":"a","src":"a.svg"}`; got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if got := m.Emoji[1].Map()["code"]; got != "!" {
		t.Fatalf("expected undefined code to render as !, got %v", got)
	}
}

func TestCacheKeysAttach(t *testing.T) {
	m := loadManifest(t, "emoji short=a src=a.svg")
	e := m.Emoji[0]
	if _, ok := e.CacheKeys(); ok {
		t.Fatal("expected no cache keys before pre-flight")
	}
	e.SetCacheKeys(CacheKeys{Base: "abc", Licensed: map[string]string{"svg": "def"}})
	keys, ok := e.CacheKeys()
	if !ok || keys.Base != "abc" || keys.Licensed["svg"] != "def" {
		t.Fatalf("unexpected keys %+v", keys)
	}
}
