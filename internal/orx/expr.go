package orx

import (
	"fmt"
	"strings"
)

// Empty is the literal that marks an explicitly empty value.
const Empty = "!"

// KV is one keyword argument.
type KV struct {
	Key   string
	Value string
}

// Kwargs holds keyword arguments in declaration order. A repeated key keeps
// its first position and takes the last value.
type Kwargs []KV

// Get returns the value for key.
func (k Kwargs) Get(key string) (string, bool) {
	for _, kv := range k {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether key was given.
func (k Kwargs) Has(key string) bool {
	_, ok := k.Get(key)
	return ok
}

// Keys lists the keys in order.
func (k Kwargs) Keys() []string {
	keys := make([]string, 0, len(k))
	for _, kv := range k {
		keys = append(keys, kv.Key)
	}
	return keys
}

// Merge returns a copy of k with the pairs of other applied in order.
func (k Kwargs) Merge(other Kwargs) Kwargs {
	out := append(Kwargs(nil), k...)
	for _, kv := range other {
		out = out.set(kv.Key, kv.Value)
	}
	return out
}

// Set returns a copy of k with key set to value.
func (k Kwargs) Set(key, value string) Kwargs {
	return append(Kwargs(nil), k...).set(key, value)
}

// Without returns a copy of k without key.
func (k Kwargs) Without(key string) Kwargs {
	out := make(Kwargs, 0, len(k))
	for _, kv := range k {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

func (k Kwargs) set(key, value string) Kwargs {
	for i := range k {
		if k[i].Key == key {
			k[i].Value = value
			return k
		}
	}
	return append(k, KV{Key: key, Value: value})
}

// Expr is a decomposed statement.
type Expr struct {
	Head   string
	Args   []string
	Kwargs Kwargs
}

// IsEmpty reports whether the statement had no head.
func (e Expr) IsEmpty() bool {
	return e.Head == ""
}

// ParseExpr decomposes a statement into head, positional arguments and
// keyword arguments. Each keyword value runs to the next `key =` or the end
// of the statement.
func ParseExpr(text string) (Expr, error) {
	segments := strings.Split(text, "=")
	if len(segments) == 1 {
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return Expr{}, nil
		}
		return Expr{Head: fields[0], Args: args(fields)}, nil
	}

	// Every segment but the last ends with the key of the following value.
	leads := make([]string, 0, len(segments)-1)
	keys := make([]string, 0, len(segments)-1)
	for i, segment := range segments[:len(segments)-1] {
		lead, key, ok := splitLastField(segment)
		if !ok {
			if i == 0 {
				return Expr{}, fmt.Errorf("%w: missing expression head before %q", ErrSyntax, strings.TrimSpace(segment)+" =")
			}
			return Expr{}, fmt.Errorf("%w: missing key or value near %q", ErrSyntax, strings.TrimSpace(segment))
		}
		leads = append(leads, lead)
		keys = append(keys, key)
	}

	fields := strings.Fields(leads[0])
	expr := Expr{Head: fields[0], Args: args(fields)}
	values := append(leads[1:], segments[len(segments)-1])
	for i, key := range keys {
		value := strings.TrimSpace(values[i])
		if value == Empty {
			value = ""
		}
		expr.Kwargs = expr.Kwargs.set(key, value)
	}
	return expr, nil
}

func args(fields []string) []string {
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

// splitLastField splits segment into everything before its last
// whitespace-delimited token and that token. Both parts must be non-empty.
func splitLastField(segment string) (string, string, bool) {
	trimmed := strings.TrimSpace(segment)
	idx := strings.LastIndexFunc(trimmed, isSpace)
	if idx < 0 {
		return "", "", false
	}
	lead := strings.TrimSpace(trimmed[:idx])
	key := trimmed[idx+1:]
	if lead == "" || key == "" {
		return "", "", false
	}
	return lead, key, true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
