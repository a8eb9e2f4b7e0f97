package manifest

import (
	"log/slog"

	"github.com/nao1215/dxmanifest/internal/model"
)

// Result is the outcome of a join.
type Result struct {
	// Rows is the manifest in reference table order.
	Rows []model.ManifestRow

	// Matched is the number of (reference row, file) pairs found,
	// including pending ones.
	Matched int

	// Pending is the number of pairs dropped for an unresolved diagnosis.
	Pending int
}

// Joiner inner-joins reference rows with scanned files.
type Joiner struct {
	// pendingValue is the diagnosis sentinel of unresolved subjects.
	pendingValue string

	// logger for structured logging.
	logger *slog.Logger
}

// JoinOption configures a Joiner.
type JoinOption func(*Joiner)

// WithPendingValue sets the diagnosis sentinel. Comparison is exact.
func WithPendingValue(v string) JoinOption {
	return func(j *Joiner) {
		j.pendingValue = v
	}
}

// WithJoinLogger sets a custom logger for the joiner.
func WithJoinLogger(logger *slog.Logger) JoinOption {
	return func(j *Joiner) {
		j.logger = logger
	}
}

// NewJoiner creates a Joiner with the given options.
func NewJoiner(opts ...JoinOption) *Joiner {
	j := &Joiner{
		pendingValue: model.DefaultPendingValue,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Join matches refs and files on identifier equality.
//
// Output rows follow the order of refs; a reference row matching several
// files yields one row per file, in the order of files. Files without an
// identifier never match. Pairs whose diagnosis is the pending sentinel are
// dropped, every other diagnosis is binarized. A diagnosis that cannot be
// binarized aborts the join with a *DiagnosisError.
//
// Neither input is modified.
func (j *Joiner) Join(refs []model.ReferenceRow, files []model.ScannedFile) (*Result, error) {
	byID := make(map[int64][]model.ScannedFile, len(files))
	for _, f := range files {
		if !f.HasIdentifier {
			continue
		}
		byID[f.Identifier] = append(byID[f.Identifier], f)
	}

	res := &Result{Rows: make([]model.ManifestRow, 0, len(refs))}
	for _, ref := range refs {
		matches := byID[ref.Identifier]
		if len(matches) == 0 {
			continue
		}
		res.Matched += len(matches)

		if ref.Diagnosis == j.pendingValue {
			res.Pending += len(matches)
			j.logger.Debug("pending diagnosis dropped",
				"subject", ref.Identifier,
				"files", len(matches),
			)
			continue
		}

		label, err := Binarize(ref.Diagnosis)
		if err != nil {
			return nil, &DiagnosisError{
				Identifier: ref.Identifier,
				Line:       ref.Line,
				Value:      ref.Diagnosis,
				Err:        err,
			}
		}

		for _, f := range matches {
			res.Rows = append(res.Rows, model.ManifestRow{
				Identifier: ref.Identifier,
				Diagnosis:  label,
				Filename:   f.Filename,
			})
		}
	}

	return res, nil
}
