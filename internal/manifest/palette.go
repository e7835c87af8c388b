package manifest

import "orxport/internal/orx"

// Palette maps slot names to literal colors, in declaration order.
type Palette struct {
	Name  string
	Slots orx.Kwargs
}

// Color returns the color assigned to slot.
func (p *Palette) Color(slot string) (string, bool) {
	if p == nil {
		return "", false
	}
	return p.Slots.Get(slot)
}

// Colormap recolors an emoji from one palette to another and carries the
// tokens substituted into its attributes.
type Colormap struct {
	Name  string
	Src   string
	Dst   string
	Attrs orx.Kwargs
}

// Attr returns an optional colormap token such as short, code, desc or bundle.
func (c *Colormap) Attr(key string) (string, bool) {
	return c.Attrs.Get(key)
}
