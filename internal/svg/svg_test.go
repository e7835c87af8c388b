package svg

import (
	"errors"
	"reflect"
	"testing"

	"orxport/internal/manifest"
	"orxport/internal/orx"
)

func palette(name string, slots ...string) *manifest.Palette {
	p := &manifest.Palette{Name: name}
	for i := 0; i+1 < len(slots); i += 2 {
		p.Slots = append(p.Slots, orx.KV{Key: slots[i], Value: slots[i+1]})
	}
	return p
}

func TestTranslateSinglePass(t *testing.T) {
	from := palette("skin", "a", "#FFCC00", "b", "#aa8800", "c", "#112233")
	to := palette("dark", "a", "#aa8800", "b", "#553311")
	doc := []byte(`<path style="fill:#ffcc00;"/><path style="fill:#AA8800;stroke:#fc0;"/><path style="fill:#112233;"/>`)

	got := string(Translate(doc, from, to))
	want := `<path style="fill:#aa8800;"/><path style="fill:#553311;stroke:#aa8800;"/><path style="fill:#112233;"/>`
	if got != want {
		t.Fatalf("unexpected translation:\n got %s\nwant %s", got, want)
	}
}

func TestTranslateRequiresTrailingSemicolon(t *testing.T) {
	from := palette("skin", "a", "#ffcc00")
	to := palette("dark", "a", "#000000")
	doc := []byte(`<path fill="#ffcc00"/>`)
	if got := string(Translate(doc, from, to)); got != string(doc) {
		t.Fatalf("attribute without ';' must be left alone, got %s", got)
	}
}

func TestChangedColors(t *testing.T) {
	from := palette("skin", "b", "#aa8800", "a", "#ffcc00", "c", "#123456", "d", "#000000")
	to := palette("dark", "a", "#553311", "b", "#AA8800", "c", "#654321", "d", "#ffffff")
	doc := []byte(`<path style="fill:#FC0;"/><path style="fill:#aa8800;"/><path style="fill:#000;"/>`)

	got := ChangedColors(doc, from, to)
	want := []SlotColor{
		{Slot: "a", From: "#ffcc00", Color: "#553311"},
		{Slot: "d", From: "#000000", Color: "#ffffff"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got := ChangedColors(doc, nil, to); got != nil {
		t.Fatalf("expected nil without palettes, got %+v", got)
	}
}

func TestAddLicense(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>` + "\n" + `<svg viewBox="0 0 32 32"><path/></svg>`)
	got, err := AddLicense(doc, "<rdf/>\n")
	if err != nil {
		t.Fatalf("AddLicense: %v", err)
	}
	want := `<?xml version="1.0"?>` + "\n" + `<svg viewBox="0 0 32 32">` + "\n<metadata>\n<rdf/>\n</metadata>\n" + `<path/></svg>`
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if _, err := AddLicense([]byte("<html></html>"), "x"); !errors.Is(err, ErrNoRoot) {
		t.Fatalf("expected ErrNoRoot, got %v", err)
	}
}

func TestViewBoxSize(t *testing.T) {
	w, h, err := ViewBoxSize([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="2 4 34 36">`))
	if err != nil || w != 32 || h != 32 {
		t.Fatalf("ViewBoxSize = %d, %d, %v", w, h, err)
	}
	for _, doc := range []string{`<svg>`, `<svg viewBox="0 0 32">`, `<svg viewBox="0 0 a 32">`} {
		if _, _, err := ViewBoxSize([]byte(doc)); !errors.Is(err, ErrNoViewBox) {
			t.Fatalf("%s: expected ErrNoViewBox, got %v", doc, err)
		}
	}
}
