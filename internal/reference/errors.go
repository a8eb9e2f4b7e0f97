package reference

import (
	"fmt"

	"github.com/nao1215/dxmanifest/internal/model"
)

// ParseError reports a malformed reference table.
// It matches model.ErrParse with errors.Is.
type ParseError struct {
	// Path is the reference file.
	Path string

	// Line is the 1-based line of the offending row, 0 when not row specific.
	Line int

	// Err describes the problem.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s line %d: %v", model.ErrParse, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", model.ErrParse, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is model.ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == model.ErrParse
}
