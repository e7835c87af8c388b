package manifest

import (
	"encoding/json"
	"sync/atomic"
)

// CacheKeys holds the export cache identities of one emoji.
type CacheKeys struct {
	Base string
	// Licensed maps license kind to the key used when that payload is
	// embedded.
	Licensed map[string]string
}

// Emoji is one compiled record: an ordered attribute map. Records are not
// modified after compilation apart from their cache keys.
type Emoji struct {
	keys   []string
	values map[string]Value
	cache  atomic.Pointer[CacheKeys]
}

func newEmoji() *Emoji {
	return &Emoji{values: make(map[string]Value)}
}

func (e *Emoji) set(key string, value Value) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Get returns the raw attribute value.
func (e *Emoji) Get(key string) (Value, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Has reports whether the attribute is present, including explicit undefined.
func (e *Emoji) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// String returns a string attribute. It reports false for missing keys and
// for attributes of another kind.
func (e *Emoji) String(key string) (string, bool) {
	v, ok := e.values[key]
	if !ok || v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Codepoints returns a codepoint attribute. It reports false for missing keys,
// explicit undefined and string attributes.
func (e *Emoji) Codepoints(key string) (Codepoints, bool) {
	v, ok := e.values[key]
	if !ok || v.kind != KindCodepoints {
		return nil, false
	}
	return append(Codepoints(nil), v.code...), true
}

// IsUndefined reports whether key was explicitly declared empty.
func (e *Emoji) IsUndefined(key string) bool {
	v, ok := e.values[key]
	return ok && v.kind == KindUndefined
}

// Keys lists attribute names in declaration order.
func (e *Emoji) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Short returns the shortcode or an empty string.
func (e *Emoji) Short() string {
	s, _ := e.String("short")
	return s
}

// Src returns the source image path relative to the input directory.
func (e *Emoji) Src() string {
	s, _ := e.String("src")
	return s
}

// Color returns the selected colormap name, if any.
func (e *Emoji) Color() (string, bool) {
	return e.String("color")
}

// Label identifies the emoji in messages: its shortcode, or its source path
// when it has none.
func (e *Emoji) Label() string {
	if short := e.Short(); short != "" {
		return short
	}
	return e.Src()
}

// CacheKeys returns the keys attached by the export pre-flight pass.
func (e *Emoji) CacheKeys() (CacheKeys, bool) {
	keys := e.cache.Load()
	if keys == nil {
		return CacheKeys{}, false
	}
	return *keys, true
}

// SetCacheKeys attaches cache keys to the record.
func (e *Emoji) SetCacheKeys(keys CacheKeys) {
	e.cache.Store(&keys)
}

// Map converts the record into plain values: strings, []int for codepoint
// sequences and "!" for explicit undefined.
func (e *Emoji) Map() map[string]any {
	out := make(map[string]any, len(e.keys))
	for _, key := range e.keys {
		v := e.values[key]
		switch v.kind {
		case KindCodepoints:
			out[key] = []int(append(Codepoints(nil), v.code...))
		case KindUndefined:
			out[key] = "!"
		default:
			out[key] = v.str
		}
	}
	return out
}

// MarshalJSON encodes the record as an object with sorted keys.
func (e *Emoji) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}
