package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"orxport/internal/orx"
	"orxport/internal/services"
)

// interpreter runs orx statements from a file and its includes. It owns the
// statements shared by manifests and parameters files: define and include.
type interpreter struct {
	home      string
	defines   map[string]string
	including []string
	exec      func(ctx context.Context, expr orx.Expr) error
}

func newInterpreter(home string) *interpreter {
	return &interpreter{home: home, defines: make(map[string]string)}
}

func (in *interpreter) loadFile(ctx context.Context, filename string) error {
	path := filepath.Join(in.home, filename)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if slices.Contains(in.including, abs) {
		return fmt.Errorf("%w: %s is already being loaded", ErrIncludeCycle, filename)
	}
	in.including = append(in.including, abs)
	defer func() { in.including = in.including[:len(in.including)-1] }()

	file, err := os.Open(path)
	if err != nil {
		marker := services.ErrIO
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return fmt.Errorf("%w: could not open manifest file %s: %w", marker, filename, err)
	}
	defer file.Close()

	statements, err := orx.Statements(file)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", services.ErrIO, filename, err)
	}
	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.run(ctx, stmt.Text); err != nil {
			return &StatementError{File: filename, Line: stmt.Line, Text: stmt.Text, Err: err}
		}
	}
	return nil
}

func (in *interpreter) run(ctx context.Context, text string) error {
	var missing string
	substituted, err := orx.SubstituteConstants(text, func(name string) (string, bool) {
		value, ok := in.defines[name]
		if !ok {
			missing = name
		}
		return value, ok
	})
	if err != nil {
		if errors.Is(err, orx.ErrUndefinedConstant) {
			return fmt.Errorf("%w: constant %s%s", ErrUndefined, missing, suggest(missing, mapKeys(in.defines)))
		}
		return fmt.Errorf("%w: %w", services.ErrValidation, err)
	}
	expr, err := orx.ParseExpr(substituted)
	if err != nil {
		return fmt.Errorf("%w: %w", services.ErrValidation, err)
	}
	if expr.IsEmpty() {
		return nil
	}
	switch expr.Head {
	case "define":
		return in.define(expr)
	case "include":
		return in.include(ctx, expr)
	default:
		return in.exec(ctx, expr)
	}
}

func (in *interpreter) define(expr orx.Expr) error {
	if len(expr.Kwargs) > 0 {
		return fmt.Errorf("%w: keyword arguments are not allowed in define", ErrInvalidArgument)
	}
	if len(expr.Args) < 2 {
		return fmt.Errorf("%w: define needs a name and a value", ErrMissingArgument)
	}
	name := expr.Args[0]
	if _, ok := in.defines[name]; ok {
		return fmt.Errorf("%w: constant %s", ErrAlreadyDefined, name)
	}
	in.defines[name] = strings.Join(expr.Args[1:], " ")
	return nil
}

func (in *interpreter) include(ctx context.Context, expr orx.Expr) error {
	if len(expr.Args) == 0 {
		return fmt.Errorf("%w: include needs a filename", ErrMissingArgument)
	}
	if len(expr.Args) > 1 {
		return fmt.Errorf("%w: multiple filenames in include", ErrInvalidArgument)
	}
	return in.loadFile(ctx, expr.Args[0])
}

func unknownStatement(head string, known []string) error {
	return fmt.Errorf("%w: %s%s", ErrUnknownStatement, head, suggest(head, known))
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
