package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/runenames"

	"orxport/internal/logging"
	"orxport/internal/orx"
)

var manifestStatements = []string{"define", "include", "palette", "colormap", "class", "license", "emoji"}

// Manifest is the compiled content of a manifest file and its includes.
type Manifest struct {
	Path      string
	Defines   map[string]string
	Palettes  map[string]*Palette
	Colormaps map[string]*Colormap
	Classes   map[string]orx.Kwargs
	Licenses  map[string]License
	Emoji     []*Emoji

	shortcodes map[string]*Emoji
	codepoints map[string]*Emoji
	logger     *slog.Logger
}

// Option customizes Load.
type Option func(*Manifest)

// WithLogger attaches a logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manifest) {
		m.logger = logging.NewComponentLogger(logger, "manifest")
	}
}

// Load parses the manifest at path. Includes resolve relative to the
// manifest's directory.
func Load(ctx context.Context, path string, opts ...Option) (*Manifest, error) {
	m := &Manifest{
		Path:       path,
		Palettes:   make(map[string]*Palette),
		Colormaps:  make(map[string]*Colormap),
		Classes:    make(map[string]orx.Kwargs),
		Licenses:   make(map[string]License),
		shortcodes: make(map[string]*Emoji),
		codepoints: make(map[string]*Emoji),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	in := newInterpreter(filepath.Dir(path))
	in.exec = m.exec
	m.Defines = in.defines
	if err := in.loadFile(ctx, filepath.Base(path)); err != nil {
		return nil, err
	}

	m.logger.DebugContext(ctx, "manifest loaded",
		logging.String("path", path),
		logging.Int("emoji", len(m.Emoji)),
		logging.Int("palettes", len(m.Palettes)),
		logging.Int("colormaps", len(m.Colormaps)),
		logging.Int("classes", len(m.Classes)),
	)
	return m, nil
}

// License returns the payload declared for kind.
func (m *Manifest) License(kind string) (License, bool) {
	l, ok := m.Licenses[kind]
	return l, ok
}

// ColorPalettes returns the source and destination palettes of the emoji's
// colormap. It reports false for emoji without a color.
func (m *Manifest) ColorPalettes(e *Emoji) (*Palette, *Palette, bool) {
	color, ok := e.Color()
	if !ok {
		return nil, nil, false
	}
	cmap, ok := m.Colormaps[color]
	if !ok {
		return nil, nil, false
	}
	return m.Palettes[cmap.Src], m.Palettes[cmap.Dst], true
}

func (m *Manifest) exec(_ context.Context, expr orx.Expr) error {
	switch expr.Head {
	case "palette":
		return m.execPalette(expr)
	case "colormap":
		return m.execColormap(expr)
	case "class":
		return m.execClass(expr)
	case "license":
		return m.execLicense(expr)
	case "emoji":
		return m.execEmoji(expr)
	default:
		return unknownStatement(expr.Head, manifestStatements)
	}
}

func singleID(expr orx.Expr) (string, error) {
	if len(expr.Args) == 0 {
		return "", fmt.Errorf("%w: missing id", ErrMissingArgument)
	}
	if len(expr.Args) > 1 {
		return "", fmt.Errorf("%w: multiple ids", ErrInvalidArgument)
	}
	return expr.Args[0], nil
}

func (m *Manifest) execPalette(expr orx.Expr) error {
	id, err := singleID(expr)
	if err != nil {
		return err
	}
	if _, ok := m.Palettes[id]; ok {
		return fmt.Errorf("%w: palette %s", ErrAlreadyDefined, id)
	}
	m.Palettes[id] = &Palette{Name: id, Slots: append(orx.Kwargs(nil), expr.Kwargs...)}
	return nil
}

func (m *Manifest) execColormap(expr orx.Expr) error {
	id, err := singleID(expr)
	if err != nil {
		return err
	}
	if _, ok := m.Colormaps[id]; ok {
		return fmt.Errorf("%w: colormap %s", ErrAlreadyDefined, id)
	}
	src, ok := expr.Kwargs.Get("src")
	if !ok {
		return fmt.Errorf("%w: src", ErrMissingArgument)
	}
	dst, ok := expr.Kwargs.Get("dst")
	if !ok {
		return fmt.Errorf("%w: dst", ErrMissingArgument)
	}
	if _, ok := m.Palettes[src]; !ok {
		return fmt.Errorf("%w: source palette %s%s", ErrUndefined, src, suggest(src, mapKeys(m.Palettes)))
	}
	if _, ok := m.Palettes[dst]; !ok {
		return fmt.Errorf("%w: target palette %s%s", ErrUndefined, dst, suggest(dst, mapKeys(m.Palettes)))
	}
	m.Colormaps[id] = &Colormap{
		Name:  id,
		Src:   src,
		Dst:   dst,
		Attrs: expr.Kwargs.Without("src").Without("dst"),
	}
	return nil
}

func (m *Manifest) execClass(expr orx.Expr) error {
	if len(expr.Args) == 0 {
		return fmt.Errorf("%w: missing id", ErrMissingArgument)
	}
	id := expr.Args[0]
	if _, ok := m.Classes[id]; ok {
		return fmt.Errorf("%w: class %s", ErrAlreadyDefined, id)
	}
	if expr.Kwargs.Has("class") {
		return fmt.Errorf("%w: illegal recursion in class definition", ErrInvalidArgument)
	}
	var attrs orx.Kwargs
	for _, parent := range expr.Args[1:] {
		inherited, ok := m.Classes[parent]
		if !ok {
			return fmt.Errorf("%w: parent class %s%s", ErrUndefined, parent, suggest(parent, mapKeys(m.Classes)))
		}
		attrs = attrs.Merge(inherited)
	}
	m.Classes[id] = attrs.Merge(expr.Kwargs)
	return nil
}

func (m *Manifest) execLicense(expr orx.Expr) error {
	home := filepath.Dir(m.Path)
	for _, kv := range expr.Kwargs {
		kind, ok := licenseKind(kv.Key)
		if !ok {
			return fmt.Errorf("%w: license kind %s (use svg or exif)", ErrInvalidArgument, kv.Key)
		}
		license, err := loadLicense(kind, filepath.Join(home, kv.Value))
		if err != nil {
			return err
		}
		m.Licenses[kind] = license
	}
	return nil
}

func (m *Manifest) execEmoji(expr orx.Expr) error {
	var attrs orx.Kwargs
	classes, _ := expr.Kwargs.Get("class")
	for _, name := range strings.Fields(classes) {
		class, ok := m.Classes[name]
		if !ok {
			return fmt.Errorf("%w: class %s%s", ErrUndefined, name, suggest(name, mapKeys(m.Classes)))
		}
		attrs = attrs.Merge(class)
	}
	attrs = attrs.Merge(expr.Kwargs)

	if !attrs.Has("src") {
		return fmt.Errorf("%w: src", ErrMissingArgument)
	}

	colors, hasColor := attrs.Get("color")
	if !hasColor {
		e, err := m.compileEmoji(attrs, "")
		if err != nil {
			return err
		}
		return m.addEmoji(e)
	}
	for _, color := range strings.Fields(colors) {
		e, err := m.compileEmoji(attrs, color)
		if err != nil {
			return err
		}
		if err := m.addEmoji(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) addEmoji(e *Emoji) error {
	if short, ok := e.String("short"); ok {
		if _, taken := m.shortcodes[short]; taken {
			return fmt.Errorf("%w: shortcode %s", ErrDuplicate, short)
		}
		m.shortcodes[short] = e
	}
	if code, ok := e.Codepoints("code"); ok {
		key := code.Filename()
		if other, taken := m.codepoints[key]; taken {
			return fmt.Errorf("%w: codepoint %s%s (already used by %s)", ErrDuplicate, code.HexHash(), codepointNames(code), other.Label())
		}
		m.codepoints[key] = e
	}
	m.Emoji = append(m.Emoji, e)
	return nil
}

func codepointNames(code Codepoints) string {
	names := make([]string, 0, len(code))
	for _, cp := range code {
		if name := runenames.Name(rune(cp)); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return " [" + strings.Join(names, ", ") + "]"
}
