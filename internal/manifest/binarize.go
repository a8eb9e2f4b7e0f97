package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/dxmanifest/internal/model"
)

// DiagnosisError reports a diagnosis code that is neither the pending
// sentinel nor an integer. It matches model.ErrValue with errors.Is.
type DiagnosisError struct {
	// Identifier is the subject of the offending reference row.
	Identifier int64

	// Line is the reference table line of the row.
	Line int

	// Value is the raw diagnosis cell.
	Value string

	// Err is the error returned by Binarize.
	Err error
}

// Error implements the error interface.
func (e *DiagnosisError) Error() string {
	return fmt.Sprintf("subject %d (reference line %d): %v", e.Identifier, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *DiagnosisError) Unwrap() error { return e.Err }

// Binarize maps a diagnosis code to a label: 0 is negative, any other
// integer is positive. Surrounding whitespace is ignored.
// A value that is not an integer (including the empty string) fails with
// an error wrapping model.ErrValue.
func Binarize(code string) (model.Label, error) {
	v := strings.TrimSpace(code)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Out of range is still an integer, and certainly not zero.
		if errors.Is(err, strconv.ErrRange) {
			return model.LabelPositive, nil
		}
		return model.LabelNegative, fmt.Errorf("%w: diagnosis %q is not an integer", model.ErrValue, code)
	}
	if n == 0 {
		return model.LabelNegative, nil
	}
	return model.LabelPositive, nil
}
