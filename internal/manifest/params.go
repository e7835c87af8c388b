package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"orxport/internal/orx"
)

var parameterStatements = []string{"define", "include", "dest"}

// Dest is one export destination: a path template, a format and whether
// license metadata is embedded.
type Dest struct {
	Structure string
	Format    string
	License   bool
}

// Parameters is the content of a parameters file.
type Parameters struct {
	Path  string
	Dests []Dest
}

// LoadParameters parses a parameters file.
func LoadParameters(ctx context.Context, path string) (*Parameters, error) {
	p := &Parameters{Path: path}
	in := newInterpreter(filepath.Dir(path))
	in.exec = p.exec
	if err := in.loadFile(ctx, filepath.Base(path)); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseParameters parses a single dest statement, as built from command line
// flags.
func ParseParameters(ctx context.Context, statement string) (*Parameters, error) {
	p := &Parameters{}
	in := newInterpreter(".")
	in.exec = p.exec
	if err := in.run(ctx, statement); err != nil {
		return nil, fmt.Errorf("in parameters %q: %w", strings.TrimSpace(statement), err)
	}
	return p, nil
}

// DestStatement renders a dest statement for the given export request.
func DestStatement(structure string, formats []string, license bool) string {
	flag := "no"
	if license {
		flag = "yes"
	}
	return fmt.Sprintf("dest structure = %s format = %s license = %s", structure, strings.Join(formats, " "), flag)
}

func (p *Parameters) exec(_ context.Context, expr orx.Expr) error {
	if expr.Head != "dest" {
		return unknownStatement(expr.Head, parameterStatements)
	}
	structure, ok := expr.Kwargs.Get("structure")
	if !ok {
		return fmt.Errorf("%w: structure", ErrMissingArgument)
	}
	formats, ok := expr.Kwargs.Get("format")
	if !ok {
		return fmt.Errorf("%w: format", ErrMissingArgument)
	}
	licenseFlag, ok := expr.Kwargs.Get("license")
	if !ok {
		return fmt.Errorf("%w: license", ErrMissingArgument)
	}
	var license bool
	switch strings.ToLower(licenseFlag) {
	case "yes", "true":
		license = true
	case "no", "false":
	default:
		return fmt.Errorf("%w: license must be yes or no, got %q", ErrInvalidValue, licenseFlag)
	}
	fields := strings.Fields(formats)
	if len(fields) == 0 {
		return fmt.Errorf("%w: format", ErrMissingArgument)
	}
	for _, format := range fields {
		p.Dests = append(p.Dests, Dest{Structure: structure, Format: format, License: license})
	}
	return nil
}
