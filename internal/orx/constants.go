package orx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax marks malformed statements.
	ErrSyntax = errors.New("syntax error")
	// ErrUndefinedConstant marks a `$name` reference with no prior define.
	ErrUndefinedConstant = errors.New("undefined constant")
)

// Lookup resolves a constant name.
type Lookup func(name string) (string, bool)

// SubstituteConstants replaces every `$name` and `$(name)` token in text.
// A bare name runs to the next whitespace. Substituted values are not
// rescanned.
func SubstituteConstants(text string, lookup Lookup) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		idx := strings.IndexByte(text[i:], '$')
		if idx < 0 {
			b.WriteString(text[i:])
			break
		}
		idx += i
		b.WriteString(text[i:idx])
		if idx+1 >= len(text) {
			return "", fmt.Errorf("%w: missing constant name", ErrSyntax)
		}

		var name string
		var end int
		if text[idx+1] == '(' {
			closing := strings.IndexByte(text[idx+2:], ')')
			if closing < 0 {
				return "", fmt.Errorf("%w: unterminated constant name", ErrSyntax)
			}
			name = text[idx+2 : idx+2+closing]
			end = idx + 2 + closing + 1
		} else {
			stop := strings.IndexFunc(text[idx+1:], isSpace)
			if stop < 0 {
				end = len(text)
			} else {
				end = idx + 1 + stop
			}
			name = text[idx+1 : end]
		}
		if name == "" {
			return "", fmt.Errorf("%w: missing constant name", ErrSyntax)
		}
		value, ok := lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUndefinedConstant, name)
		}
		b.WriteString(value)
		i = end
	}
	return b.String(), nil
}

// MapLookup adapts a map to a Lookup.
func MapLookup(values map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}
