package svg

import (
	"regexp"
	"slices"
	"strings"

	"orxport/internal/manifest"
)

// SlotColor is a palette slot with the source color it matches and the
// color it is translated to.
type SlotColor struct {
	Slot  string
	From  string
	Color string
}

type replacement struct {
	slot    string
	source  string
	pattern string
	target  string
}

// colorPatterns lists the spellings of color that are recolored: the color
// followed by ';', plus the three digit short form of six digit hex colors.
func colorPatterns(color string) []string {
	patterns := []string{color + ";"}
	if len(color) == 7 && color[0] == '#' && color[1] == color[2] && color[3] == color[4] && color[5] == color[6] {
		patterns = append(patterns, string([]byte{'#', color[1], color[3], color[5], ';'}))
	}
	return patterns
}

func replacements(from, to *manifest.Palette) []replacement {
	if from == nil || to == nil {
		return nil
	}
	var out []replacement
	seen := make(map[string]struct{})
	for _, slot := range from.Slots {
		target, ok := to.Color(slot.Key)
		if !ok || target == "" || slot.Value == "" {
			continue
		}
		for _, pattern := range colorPatterns(slot.Value) {
			key := strings.ToLower(pattern)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, replacement{slot: slot.Key, source: slot.Value, pattern: pattern, target: target + ";"})
		}
	}
	return out
}

func compile(reps []replacement) *regexp.Regexp {
	alternatives := make([]string, len(reps))
	for i, r := range reps {
		alternatives[i] = regexp.QuoteMeta(r.pattern)
	}
	return regexp.MustCompile("(?i)" + strings.Join(alternatives, "|"))
}

// Translate recolors doc from the source palette to the destination palette.
// Matching is case-insensitive and happens in a single pass, so a color
// written by one slot is never rewritten by another.
func Translate(doc []byte, from, to *manifest.Palette) []byte {
	reps := replacements(from, to)
	if len(reps) == 0 {
		return doc
	}
	targets := make(map[string]string, len(reps))
	for _, r := range reps {
		targets[strings.ToLower(r.pattern)] = r.target
	}
	return compile(reps).ReplaceAllFunc(doc, func(match []byte) []byte {
		return []byte(targets[strings.ToLower(string(match))])
	})
}

// ChangedColors lists the slots whose source color occurs in doc and whose
// destination color differs, sorted by slot. Colors are lowercased.
func ChangedColors(doc []byte, from, to *manifest.Palette) []SlotColor {
	reps := replacements(from, to)
	if len(reps) == 0 {
		return nil
	}
	lower := strings.ToLower(string(doc))
	changed := make(map[string]SlotColor)
	for _, r := range reps {
		if strings.EqualFold(r.source+";", r.target) {
			continue
		}
		if _, ok := changed[r.slot]; ok {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.pattern)) {
			changed[r.slot] = SlotColor{
				Slot:  r.slot,
				From:  strings.ToLower(r.source),
				Color: strings.ToLower(strings.TrimSuffix(r.target, ";")),
			}
		}
	}
	out := make([]SlotColor, 0, len(changed))
	for _, c := range changed {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b SlotColor) int { return strings.Compare(a.Slot, b.Slot) })
	return out
}
