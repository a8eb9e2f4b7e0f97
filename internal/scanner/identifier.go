package scanner

import (
	"fmt"
	"regexp"
	"strconv"
)

// digitRunRE matches maximal runs of ASCII decimal digits.
var digitRunRE = regexp.MustCompile(`[0-9]+`)

// minRunLength is the shortest digit run that can be an identifier.
const minRunLength = 2

// Selection chooses which qualifying digit run becomes the identifier.
type Selection string

const (
	// SelectLongest picks the longest run; on equal length the last one
	// in left-to-right order wins.
	SelectLongest Selection = "longest"

	// SelectLast picks the last qualifying run whatever its length.
	SelectLast Selection = "last"
)

// DefaultSelection is the rule used when none is configured.
const DefaultSelection = SelectLongest

// ParseSelection converts a configuration value into a Selection.
// The empty string yields DefaultSelection.
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case "":
		return DefaultSelection, nil
	case SelectLongest, SelectLast:
		return Selection(s), nil
	default:
		return "", fmt.Errorf("unknown identifier selection %q (want %q or %q)", s, SelectLongest, SelectLast)
	}
}

// DigitRuns returns every maximal run of decimal digits in name,
// in left-to-right order.
func DigitRuns(name string) []string {
	return digitRunRE.FindAllString(name, -1)
}

// SelectRun returns the run that sel designates among runs, ignoring runs
// shorter than two digits. ok is false when no run qualifies.
func SelectRun(runs []string, sel Selection) (run string, ok bool) {
	for _, r := range runs {
		if len(r) < minRunLength {
			continue
		}
		switch sel {
		case SelectLast:
			run, ok = r, true
		default:
			// >= so that a later run of equal length replaces an earlier one.
			if len(r) >= len(run) {
				run, ok = r, true
			}
		}
	}
	return run, ok
}

// ExtractIdentifier derives the subject identifier of a filename.
// It returns an error only when the selected run does not fit in an int64;
// a filename without a qualifying run returns ok == false and a nil error.
func ExtractIdentifier(name string, sel Selection) (id int64, ok bool, err error) {
	run, found := SelectRun(DigitRuns(name), sel)
	if !found {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(run, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("identifier %q in %q: %w", run, name, err)
	}
	return id, true, nil
}
