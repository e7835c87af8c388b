package catalog

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"orxport/internal/fileutil"
	"orxport/internal/manifest"
	"orxport/internal/services"
)

// WriteJSON writes emoji as a JSON array of objects with sorted keys.
func WriteJSON(w io.Writer, emoji []*manifest.Emoji) error {
	if emoji == nil {
		emoji = []*manifest.Emoji{}
	}
	data, err := json.MarshalIndent(emoji, "", "    ")
	if err != nil {
		return fmt.Errorf("encode emoji json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteYAML writes emoji as a YAML sequence, keeping attribute declaration
// order.
func WriteYAML(w io.Writer, emoji []*manifest.Emoji) error {
	docs := make([]yaml.MapSlice, 0, len(emoji))
	for _, e := range emoji {
		values := e.Map()
		item := make(yaml.MapSlice, 0, len(values))
		for _, key := range e.Keys() {
			item = append(item, yaml.MapItem{Key: key, Value: values[key]})
		}
		docs = append(docs, item)
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode emoji yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Web is the category and root index consumed by the website. Roots without
// color or morph variants map to null.
type Web struct {
	Cats  map[string][]string `json:"cats"`
	Roots map[string][]string `json:"roots"`
}

// BuildWeb indexes emoji by category and root. Every emoji must declare
// both.
func BuildWeb(emoji []*manifest.Emoji) (Web, error) {
	web := Web{Cats: make(map[string][]string), Roots: make(map[string][]string)}
	for _, e := range emoji {
		root, ok := attr(e, "root")
		if !ok {
			return Web{}, fmt.Errorf("%w: no root defined for emoji %s", services.ErrValidation, e.Label())
		}
		cat, ok := attr(e, "cat")
		if !ok {
			return Web{}, fmt.Errorf("%w: no category defined for emoji %s", services.ErrValidation, e.Label())
		}
		if !slices.Contains(web.Cats[cat], root) {
			web.Cats[cat] = append(web.Cats[cat], root)
			web.Roots[root] = nil
		}
		if e.Has("morph") || e.Has("color") {
			morph, _ := attr(e, "morph")
			color, _ := attr(e, "color")
			suffix := morph + color
			if morph != "" && color != "" {
				suffix = morph + "_" + color
			}
			web.Roots[root] = append(web.Roots[root], suffix)
		}
	}
	return web, nil
}

// WriteWeb writes the website index as indented JSON.
func WriteWeb(w io.Writer, web Web) error {
	data, err := json.MarshalIndent(web, "", "    ")
	if err != nil {
		return fmt.Errorf("encode web metadata: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile renders with write and replaces path atomically.
func WriteFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return services.Wrap(services.ErrIO, "catalog", "write", path, err)
	}
	return nil
}

// Category counts the emoji in one category.
type Category struct {
	Name  string
	Title string
	Count int
}

// Categories counts emoji per category, sorted by name. Emoji without a
// category are grouped under an empty name.
func Categories(emoji []*manifest.Emoji) []Category {
	counts := make(map[string]int)
	for _, e := range emoji {
		cat, _ := attr(e, "cat")
		counts[cat]++
	}
	title := cases.Title(language.English)
	out := make([]Category, 0, len(counts))
	for name, count := range counts {
		display := "Uncategorized"
		if name != "" {
			display = title.String(name)
		}
		out = append(out, Category{Name: name, Title: display, Count: count})
	}
	slices.SortFunc(out, func(a, b Category) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func attr(e *manifest.Emoji, key string) (string, bool) {
	v, ok := e.Get(key)
	if !ok || v.Kind() == manifest.KindUndefined {
		return "", false
	}
	return v.String(), true
}
