package destpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"orxport/internal/manifest"
	"orxport/internal/services"
)

var (
	// ErrUnresolved marks a template code that cannot be resolved for an emoji.
	ErrUnresolved = fmt.Errorf("%w: cannot resolve path", services.ErrValidation)
	// ErrFiltered marks an emoji deliberately excluded from the output, such
	// as one with an explicitly undefined codepoint under a %u template.
	ErrFiltered = errors.New("filtered from export")
)

var codePattern = regexp.MustCompile(`%(\([^)]*\)|.)`)

// IsFiltered reports whether err is the soft skip signal.
func IsFiltered(err error) bool {
	return errors.Is(err, ErrFiltered)
}

// Resolve expands template for e and f and appends the format extension.
// Each distinct code is resolved once and replaced everywhere it occurs.
func Resolve(template string, e *manifest.Emoji, f Format) (string, error) {
	if _, ok := extensions[f.Family]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, f.Name)
	}
	path := template + f.Extension()

	resolved := make(map[string]string)
	var filtered error
	var b strings.Builder
	last := 0
	for _, loc := range codePattern.FindAllStringSubmatchIndex(path, -1) {
		token := path[loc[0]:loc[1]]
		value, ok := resolved[token]
		if !ok {
			var err error
			value, err = resolveCode(path[loc[2]:loc[3]], e, f)
			if err != nil {
				if IsFiltered(err) {
					// Keep looking: a hard failure elsewhere takes precedence.
					filtered = err
					resolved[token] = ""
					continue
				}
				return "", err
			}
			resolved[token] = value
		}
		b.WriteString(path[last:loc[0]])
		b.WriteString(value)
		last = loc[1]
	}
	if filtered != nil {
		return "", filtered
	}
	b.WriteString(path[last:])
	return b.String(), nil
}

func resolveCode(code string, e *manifest.Emoji, f Format) (string, error) {
	if strings.HasPrefix(code, "(") {
		attr := strings.TrimSuffix(strings.TrimPrefix(code, "("), ")")
		return resolveAttr(attr, e)
	}
	switch code {
	case "c":
		color, ok := e.Color()
		if !ok {
			return "", fmt.Errorf("%w: %%c for %s: no colormap", ErrUnresolved, e.Label())
		}
		return color, nil
	case "C":
		if color, ok := e.Color(); ok && color != "" {
			return "_" + color, nil
		}
		return "", nil
	case "d":
		src, ok := e.String("src")
		if !ok {
			return "", fmt.Errorf("%w: %%d for %s: no source file", ErrUnresolved, e.Label())
		}
		return filepath.Dir(filepath.FromSlash(src)), nil
	case "f":
		return f.Name, nil
	case "i":
		return string(f.Family), nil
	case "z":
		return strconv.Itoa(f.Size), nil
	case "s":
		short, ok := e.String("short")
		if !ok {
			return "", fmt.Errorf("%w: %%s for %s: no shortcode", ErrUnresolved, e.Label())
		}
		return short, nil
	case "u":
		if e.IsUndefined("code") {
			return "", fmt.Errorf("%w: %s has an explicitly undefined codepoint", ErrFiltered, e.Label())
		}
		code, ok := e.Codepoints("code")
		if !ok {
			return "", fmt.Errorf("%w: %%u for %s: no unicode codepoint defined", ErrUnresolved, e.Label())
		}
		return code.Filename(), nil
	case "U":
		if code, ok := e.Codepoints("code"); ok {
			return code.Filename(), nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: unknown format code %%%s", ErrUnresolved, code)
	}
}

func resolveAttr(attr string, e *manifest.Emoji) (string, error) {
	value, ok := e.Get(attr)
	if !ok {
		return "", fmt.Errorf("%w: %%(%s) for %s: missing property", ErrUnresolved, attr, e.Label())
	}
	switch value.Kind() {
	case manifest.KindUndefined:
		return "", fmt.Errorf("%w: %s has an explicitly undefined %s", ErrFiltered, e.Label(), attr)
	case manifest.KindCodepoints:
		code, _ := e.Codepoints(attr)
		return code.Filename(), nil
	default:
		return value.String(), nil
	}
}
