package manifest

import (
	"errors"
	"fmt"
	"strings"

	"orxport/internal/services"
)

var (
	ErrUnknownStatement = fmt.Errorf("%w: unknown expression type", services.ErrValidation)
	ErrAlreadyDefined   = fmt.Errorf("%w: already defined", services.ErrValidation)
	ErrUndefined        = fmt.Errorf("%w: undefined", services.ErrValidation)
	ErrMissingArgument  = fmt.Errorf("%w: missing argument", services.ErrValidation)
	ErrInvalidArgument  = fmt.Errorf("%w: invalid argument", services.ErrValidation)
	ErrInvalidValue     = fmt.Errorf("%w: invalid value", services.ErrValidation)
	ErrDuplicate        = fmt.Errorf("%w: already in use", services.ErrValidation)
	ErrIncludeCycle     = fmt.Errorf("%w: include cycle", services.ErrValidation)
)

// StatementError annotates a failed statement with its location.
type StatementError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("in manifest file %s at line %d:\n  %s\n%v", e.File, e.Line, strings.TrimSpace(e.Text), e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Location returns the innermost statement location of err, following
// include chains.
func Location(err error) (file string, line int, ok bool) {
	var stmt *StatementError
	for errors.As(err, &stmt) {
		file, line, ok = stmt.File, stmt.Line, true
		err = stmt.Err
	}
	return file, line, ok
}
