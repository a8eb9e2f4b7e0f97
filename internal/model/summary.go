package model

import "time"

// Summary describes a finished (or failed) build.
// It is what the report writers print and what the history database stores.
type Summary struct {
	// ID is the history record ID. Zero when the run was not recorded.
	ID int64 `json:"id,omitempty"`

	Dataset       string    `json:"dataset,omitempty"`
	ImageDir      string    `json:"image_dir"`
	ReferencePath string    `json:"reference_path"`
	OutputPath    string    `json:"output_path"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`

	// FilesScanned is the number of directory entries.
	FilesScanned int `json:"files_scanned"`

	// FilesUnidentified is the number of entries whose name holds no
	// usable identifier. They are excluded from the manifest.
	FilesUnidentified int `json:"files_unidentified"`

	// FilesUnmatched is the number of identified entries whose identifier
	// is absent from the reference table.
	FilesUnmatched int `json:"files_unmatched"`

	// ReferenceRows is the number of rows of the phenotype table.
	ReferenceRows int `json:"reference_rows"`

	// Matched is the number of joined pairs before the pending filter.
	Matched int `json:"matched"`

	// Pending is the number of joined pairs dropped as unresolved.
	Pending int `json:"pending"`

	// RowsWritten is the number of manifest rows on disk. Zero, like the
	// label counts, when the manifest was not written.
	RowsWritten int `json:"rows_written"`

	Positive int `json:"positive"`
	Negative int `json:"negative"`

	// Digest is the hex BLAKE2b-256 digest of the manifest file.
	Digest string `json:"digest,omitempty"`

	// Error is set when the run failed.
	Error string `json:"error,omitempty"`
}

// NewSummary computes the summary of a run.
func NewSummary(run *Run) *Summary {
	s := &Summary{
		Dataset:       run.Dataset,
		ImageDir:      run.ImageDir,
		ReferencePath: run.ReferencePath,
		OutputPath:    run.OutputPath,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		FilesScanned:  len(run.Files),
		ReferenceRows: len(run.References),
		Matched:       run.Matched,
		Pending:       run.Pending,
		Digest:        run.Digest,
		Error:         run.ErrorMessage,
	}

	known := make(map[int64]struct{}, len(run.References))
	for _, ref := range run.References {
		known[ref.Identifier] = struct{}{}
	}
	for _, f := range run.Files {
		if !f.HasIdentifier {
			s.FilesUnidentified++
			continue
		}
		if _, ok := known[f.Identifier]; !ok {
			s.FilesUnmatched++
		}
	}

	if run.Digest == "" {
		return s
	}

	s.RowsWritten = len(run.Rows)
	for _, row := range run.Rows {
		if row.Diagnosis == LabelPositive {
			s.Positive++
		} else {
			s.Negative++
		}
	}

	return s
}

// Duration returns how long the run took. Zero if it did not finish.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Failed reports whether the run was aborted.
func (s *Summary) Failed() bool {
	return s.Error != ""
}
