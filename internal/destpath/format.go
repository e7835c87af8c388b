package destpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orxport/internal/services"
)

// ErrInvalidFormat marks an unrecognized export format.
var ErrInvalidFormat = fmt.Errorf("%w: invalid export format", services.ErrValidation)

// Family names a codec family.
type Family string

const (
	FamilySVG  Family = "svg"
	FamilySVGO Family = "svgo"
	FamilyPNG  Family = "png"
	FamilyPNGC Family = "pngc"
	FamilyWebP Family = "webp"
	FamilyAVIF Family = "avif"
	FamilyFLIF Family = "flif"
)

var extensions = map[Family]string{
	FamilySVG:  ".svg",
	FamilySVGO: ".svg",
	FamilyPNG:  ".png",
	FamilyPNGC: ".png",
	FamilyWebP: ".webp",
	FamilyAVIF: ".avif",
	FamilyFLIF: ".flif",
}

// Format is a parsed export format such as `svg` or `png-64`.
type Format struct {
	Name   string
	Family Family
	// Size is the raster edge length in pixels; zero for vector formats.
	Size int
}

// ParseFormat parses a format identifier. Vector families take no size;
// raster families are spelled `<family>-<size>`.
func ParseFormat(name string) (Format, error) {
	name = strings.TrimSpace(name)
	family, sizeText, sized := strings.Cut(name, "-")
	f := Format{Name: name, Family: Family(family)}
	if _, ok := extensions[f.Family]; !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}
	if f.IsVector() {
		if sized {
			return Format{}, fmt.Errorf("%w: %q (%s takes no size)", ErrInvalidFormat, name, family)
		}
		return f, nil
	}
	if !sized {
		return Format{}, fmt.Errorf("%w: %q (use %s-SIZE)", ErrInvalidFormat, name, family)
	}
	size, err := strconv.Atoi(sizeText)
	if err != nil || size <= 0 {
		return Format{}, fmt.Errorf("%w: %q (size must be a positive integer)", ErrInvalidFormat, name)
	}
	f.Size = size
	return f, nil
}

// ParseFormats parses a list of identifiers, rejecting duplicates.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	var errs []error
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// IsVector reports whether the format is an SVG variant.
func (f Format) IsVector() bool {
	return f.Family == FamilySVG || f.Family == FamilySVGO
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return extensions[f.Family]
}

// SupportsEXIF reports whether license metadata is embedded with exiftool
// after export.
func (f Format) SupportsEXIF() bool {
	switch f.Family {
	case FamilyPNG, FamilyPNGC, FamilyAVIF:
		return true
	default:
		return false
	}
}

func (f Format) String() string {
	return f.Name
}
