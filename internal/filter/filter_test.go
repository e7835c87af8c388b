package filter

import (
	"errors"
	"testing"

	"orxport/internal/services"
	"orxport/internal/testsupport"
)

const filterManifest = `
palette skin a=#ffcc00
palette dark a=#553311
colormap dark src=skin dst=dark short=dark
class people cat=people
emoji short=smile src=smile.svg code=#1f600 cat=smileys
emoji short=wave class=people src=wave.svg code=#1f44b
emoji short=hand%C class=people src=hand.svg color=dark
emoji short=blank src=blank.svg code=!
`

func shorts(t *testing.T, f *Filter) []string {
	t.Helper()
	m := testsupport.LoadManifest(t, filterManifest, nil)
	emoji, err := f.Apply(m.Emoji)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	out := make([]string, 0, len(emoji))
	for _, e := range emoji {
		out = append(out, e.Short())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []string
		want  []string
	}{
		{"no rules", nil, []string{"smile", "wave", "hand_dark", "blank"}},
		{"single value", []string{"cat=people"}, []string{"wave", "hand_dark"}},
		{"several values", []string{"short=smile,wave"}, []string{"smile", "wave"}},
		{"any value", []string{"color=*"}, []string{"hand_dark"}},
		{"absent", []string{"color=!"}, []string{"smile", "wave", "blank"}},
		{"absent or value", []string{"cat=!,smileys"}, []string{"smile", "blank"}},
		{"codepoint hex", []string{"code=#1f600"}, []string{"smile"}},
		{"codepoint filename", []string{"code=1f44b"}, []string{"wave"}},
		{"explicitly undefined", []string{"code=!"}, []string{"hand_dark", "blank"}},
		{"combined", []string{"cat=people", "color=!"}, []string{"wave"}},
		{"no match", []string{"cat=flags"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.rules, "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := shorts(t, f); !equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhere(t *testing.T) {
	tests := []struct {
		where string
		want  []string
	}{
		{`cat == "people" && color == nil`, []string{"wave"}},
		{`short startsWith "h" or short == "smile"`, []string{"smile", "hand_dark"}},
		{`code == "!"`, []string{"blank"}},
		{`desc != nil`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			f, err := New(nil, tt.where)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := shorts(t, f); !equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvalidFilters(t *testing.T) {
	for _, rule := range []string{"cat", "=people", ""} {
		if _, err := New([]string{rule}, ""); !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("rule %q: expected ErrInvalidFilter, got %v", rule, err)
		}
	}
	_, err := New(nil, "cat ==")
	if !errors.Is(err, ErrInvalidFilter) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected invalid expression error, got %v", err)
	}
}

func TestEmpty(t *testing.T) {
	var nilFilter *Filter
	if !nilFilter.Empty() {
		t.Fatal("nil filter must be empty")
	}
	f, err := New(nil, "  ")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.Empty() {
		t.Fatal("blank expression must be ignored")
	}
}
