package export

import (
	"errors"
	"fmt"

	"orxport/internal/destpath"
	"orxport/internal/manifest"
)

// Target is one requested output: a path template, a format and whether
// license metadata is embedded.
type Target struct {
	Structure string
	Format    destpath.Format
	License   bool
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.Format.Name, t.Structure)
}

// TargetsFromDests parses the formats of parameter dest entries.
func TargetsFromDests(dests []manifest.Dest) ([]Target, error) {
	targets := make([]Target, 0, len(dests))
	var errs []error
	for _, dest := range dests {
		f, err := destpath.ParseFormat(dest.Format)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		targets = append(targets, Target{Structure: dest.Structure, Format: f, License: dest.License})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no export destinations", destpath.ErrInvalidFormat)
	}
	return targets, nil
}
