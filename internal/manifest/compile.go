package manifest

import (
	"fmt"
	"strings"

	"orxport/internal/orx"
)

// zeroWidthJoiner prefixes colormap codepoints substituted through %U.
const zeroWidthJoiner = "#200D "

// compileEmoji turns merged statement attributes into a record for one
// color, or for no color when color is empty.
func (m *Manifest) compileEmoji(attrs orx.Kwargs, color string) (*Emoji, error) {
	var cmap *Colormap
	if color == "" {
		attrs = attrs.Without("color")
	} else {
		var ok bool
		cmap, ok = m.Colormaps[color]
		if !ok {
			return nil, fmt.Errorf("%w: colormap %s%s", ErrUndefined, color, suggest(color, mapKeys(m.Colormaps)))
		}
		attrs = attrs.Set("color", color)
	}

	resolved, err := resolveAttrs(attrs, cmap)
	if err != nil {
		return nil, err
	}

	e := newEmoji()
	for _, kv := range resolved {
		if kv.Key != "code" {
			e.set(kv.Key, StringValue(kv.Value))
			continue
		}
		if strings.Contains(kv.Value, "!") || strings.TrimSpace(kv.Value) == "" {
			e.set("code", UndefinedValue())
			continue
		}
		code, err := ParseCodepoints(kv.Value)
		if err != nil {
			return nil, err
		}
		e.set("code", CodepointsValue(code))
	}

	if desc, ok := e.String("desc"); ok && cmap != nil {
		if suffix, ok := cmap.Attr("desc"); ok && suffix != "" {
			e.set("desc", StringValue(desc+" ("+suffix+")"))
		}
	}
	if e.Has("bundle") && cmap != nil {
		if bundle, ok := cmap.Attr("bundle"); ok {
			e.set("bundle", StringValue(bundle))
		}
	}
	if !e.Has("root") && cmap == nil && !e.Has("morph") {
		if short, ok := e.String("short"); ok {
			e.set("root", StringValue(short))
		}
	}
	return e, nil
}

// resolveAttrs applies colormap tokens and then %(attr) references to every
// attribute value. References resolve recursively; a cycle is an error.
func resolveAttrs(attrs orx.Kwargs, cmap *Colormap) (orx.Kwargs, error) {
	tokens := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		value, err := substituteColormap(kv.Value, cmap)
		if err != nil {
			return nil, err
		}
		tokens[kv.Key] = value
	}

	r := &refResolver{raw: tokens, done: make(map[string]string, len(attrs))}
	out := make(orx.Kwargs, 0, len(attrs))
	for _, kv := range attrs {
		value, err := r.resolve(kv.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, orx.KV{Key: kv.Key, Value: value})
	}
	return out, nil
}

func substituteColormap(value string, cmap *Colormap) (string, error) {
	if !strings.Contains(value, "%") {
		return value, nil
	}
	for _, token := range []string{"%c", "%C", "%u", "%U"} {
		if !strings.Contains(value, token) {
			continue
		}
		if cmap == nil {
			return "", fmt.Errorf("%w: %s without colormap", ErrInvalidValue, token)
		}
		key, what := "short", "shortcode"
		if token == "%u" || token == "%U" {
			key, what = "code", "codepoint"
		}
		subst, ok := cmap.Attr(key)
		if !ok {
			return "", fmt.Errorf("%w: %s for colormap %s", ErrUndefined, what, cmap.Name)
		}
		switch {
		case token == "%C" && subst != "":
			subst = "_" + subst
		case token == "%U" && subst != "":
			subst = zeroWidthJoiner + subst
		}
		value = strings.ReplaceAll(value, token, subst)
	}
	return value, nil
}

type refResolver struct {
	raw      map[string]string
	done     map[string]string
	visiting []string
}

func (r *refResolver) resolve(key string) (string, error) {
	if value, ok := r.done[key]; ok {
		return value, nil
	}
	for i, k := range r.visiting {
		if k == key {
			chain := append(append([]string(nil), r.visiting[i:]...), key)
			return "", fmt.Errorf("%w: cyclic property reference %s", ErrInvalidValue, strings.Join(chain, " -> "))
		}
	}
	r.visiting = append(r.visiting, key)
	defer func() { r.visiting = r.visiting[:len(r.visiting)-1] }()

	value := r.raw[key]
	var b strings.Builder
	for {
		idx := strings.Index(value, "%(")
		if idx < 0 {
			b.WriteString(value)
			break
		}
		end := strings.IndexByte(value[idx+2:], ')')
		if end < 0 {
			return "", fmt.Errorf("%w: no matching parenthesis in %s", ErrInvalidValue, key)
		}
		prop := value[idx+2 : idx+2+end]
		if _, ok := r.raw[prop]; !ok {
			return "", fmt.Errorf("%w: property %s%s", ErrUndefined, prop, suggest(prop, mapKeys(r.raw)))
		}
		sub, err := r.resolve(prop)
		if err != nil {
			return "", err
		}
		b.WriteString(value[:idx])
		b.WriteString(sub)
		value = value[idx+2+end+1:]
	}
	r.done[key] = b.String()
	return r.done[key], nil
}
