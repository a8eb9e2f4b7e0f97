package model

// Label is a binarized diagnosis.
type Label int

const (
	// LabelNegative is the label of diagnosis code 0 (typically developing control).
	LabelNegative Label = 0

	// LabelPositive is the label of every non-zero diagnosis code.
	// ADHD subtypes 1, 2 and 3 all collapse to this label.
	LabelPositive Label = 1
)

// DefaultPendingValue is the diagnosis cell value of subjects whose
// diagnosis has not been resolved yet.
const DefaultPendingValue = "pending"

// String returns a human-readable representation of the label.
func (l Label) String() string {
	switch l {
	case LabelNegative:
		return "negative"
	case LabelPositive:
		return "positive"
	default:
		return "unknown"
	}
}
