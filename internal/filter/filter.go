package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"orxport/internal/manifest"
	"orxport/internal/services"
)

// ErrInvalidFilter marks a malformed filter argument.
var ErrInvalidFilter = fmt.Errorf("%w: invalid filter", services.ErrValidation)

const (
	// Any matches every value of a present attribute.
	Any = "*"
	// Absent matches emoji that lack the attribute or declare it empty.
	Absent = "!"
)

// Rule restricts one attribute to a set of values.
type Rule struct {
	Key    string
	Values []string
}

// ParseRule parses `key=v1,v2,...`.
func ParseRule(text string) (Rule, error) {
	key, values, ok := strings.Cut(text, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Rule{}, fmt.Errorf("%w: %q (expected key=value[,value...])", ErrInvalidFilter, text)
	}
	rule := Rule{Key: key}
	for _, v := range strings.Split(values, ",") {
		rule.Values = append(rule.Values, strings.TrimSpace(v))
	}
	return rule, nil
}

// Match reports whether e satisfies the rule. A missing attribute matches
// only when the values include "!"; a present one matches "*" or any listed
// value. Codepoint attributes compare in both "#1f600" and "1f600" forms.
func (r Rule) Match(e *manifest.Emoji) bool {
	value, ok := e.Get(r.Key)
	if !ok {
		return slices.Contains(r.Values, Absent)
	}
	if slices.Contains(r.Values, Any) {
		return true
	}
	if slices.Contains(r.Values, value.String()) {
		return true
	}
	if code, ok := e.Codepoints(r.Key); ok {
		return slices.Contains(r.Values, code.Filename())
	}
	return false
}

// Filter combines attribute rules and an optional boolean expression. All
// parts must match.
type Filter struct {
	rules []Rule
	where string
	prog  *vm.Program
}

// New parses rules (each `key=v1,v2`) and compiles the expression where.
// Attributes are exposed to the expression as strings; attributes the emoji
// lacks evaluate to nil.
func New(rules []string, where string) (*Filter, error) {
	f := &Filter{where: strings.TrimSpace(where)}
	for _, text := range rules {
		rule, err := ParseRule(text)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, rule)
	}
	if f.where != "" {
		prog, err := expr.Compile(f.where,
			expr.Env(map[string]any{}),
			expr.AllowUndefinedVariables(),
			expr.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: expression %q: %w", ErrInvalidFilter, f.where, err)
		}
		f.prog = prog
	}
	return f, nil
}

// Empty reports whether the filter accepts everything.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.rules) == 0 && f.prog == nil)
}

// Match reports whether e passes every rule and the expression.
func (f *Filter) Match(e *manifest.Emoji) (bool, error) {
	if f.Empty() {
		return true, nil
	}
	for _, rule := range f.rules {
		if !rule.Match(e) {
			return false, nil
		}
	}
	if f.prog == nil {
		return true, nil
	}
	out, err := vm.Run(f.prog, env(e))
	if err != nil {
		return false, fmt.Errorf("%w: expression %q on %s: %w", ErrInvalidFilter, f.where, e.Label(), err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Apply returns the emoji that match, in order.
func (f *Filter) Apply(emoji []*manifest.Emoji) ([]*manifest.Emoji, error) {
	if f.Empty() {
		return emoji, nil
	}
	out := make([]*manifest.Emoji, 0, len(emoji))
	for _, e := range emoji {
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func env(e *manifest.Emoji) map[string]any {
	out := make(map[string]any, len(e.Keys()))
	for _, key := range e.Keys() {
		v, _ := e.Get(key)
		out[key] = v.String()
	}
	return out
}
