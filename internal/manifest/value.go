package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindCodepoints
	// KindUndefined marks an attribute that was explicitly declared empty,
	// such as `code = !`.
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindCodepoints:
		return "codepoints"
	case KindUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Value is one emoji attribute.
type Value struct {
	kind Kind
	str  string
	code Codepoints
}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func CodepointsValue(c Codepoints) Value {
	return Value{kind: KindCodepoints, code: append(Codepoints(nil), c...)}
}

func UndefinedValue() Value { return Value{kind: KindUndefined} }

func (v Value) Kind() Kind { return v.kind }

// String renders the value the way it is written in a manifest.
func (v Value) String() string {
	switch v.kind {
	case KindCodepoints:
		return v.code.HexHash()
	case KindUndefined:
		return "!"
	default:
		return v.str
	}
}

// Codepoints is a sequence of Unicode scalar values.
type Codepoints []int

// ParseCodepoints parses whitespace separated decimal or `#hex` tokens.
func ParseCodepoints(text string) (Codepoints, error) {
	fields := strings.Fields(text)
	out := make(Codepoints, 0, len(fields))
	for _, field := range fields {
		var (
			n   int64
			err error
		)
		if rest, ok := strings.CutPrefix(field, "#"); ok {
			n, err = strconv.ParseInt(rest, 16, 32)
		} else {
			n, err = strconv.ParseInt(field, 10, 32)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: expected a number: %s", ErrInvalidValue, field)
		}
		if n < 0 || n > 0x10FFFF {
			return nil, fmt.Errorf("%w: not a unicode codepoint: %s", ErrInvalidValue, field)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// HexHash renders the sequence as `#1f44d #1f3fb`.
func (c Codepoints) HexHash() string {
	return c.join(" ", "#")
}

// Filename renders the sequence as `1f44d-1f3fb`.
func (c Codepoints) Filename() string {
	return c.join("-", "")
}

func (c Codepoints) join(sep, prefix string) string {
	parts := make([]string, len(c))
	for i, cp := range c {
		parts[i] = prefix + strconv.FormatInt(int64(cp), 16)
	}
	return strings.Join(parts, sep)
}
