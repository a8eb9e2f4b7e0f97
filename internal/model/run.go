package model

import "time"

// Run carries the state of one manifest build through the pipeline.
// Each step reads what earlier steps produced and fills in its own part.
type Run struct {
	// Dataset is the name of the dataset configuration used, if any.
	Dataset string `json:"dataset,omitempty"`

	// ImageDir is the directory holding the scan files.
	ImageDir string `json:"image_dir"`

	// ReferencePath is the phenotype table.
	ReferencePath string `json:"reference_path"`

	// OutputPath is the manifest destination.
	OutputPath string `json:"output_path"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is set by the write step once the manifest is on disk.
	FinishedAt time.Time `json:"finished_at"`

	// Files is the directory listing, in lexical filename order.
	Files []ScannedFile `json:"-"`

	// References is the phenotype table in file order.
	References []ReferenceRow `json:"-"`

	// Rows is the manifest, in reference table order.
	Rows []ManifestRow `json:"-"`

	// Matched is the number of (reference row, file) pairs the join found,
	// pending ones included.
	Matched int `json:"matched"`

	// Pending is the number of matched pairs dropped for an unresolved diagnosis.
	Pending int `json:"pending"`

	// Digest is the hex BLAKE2b-256 digest of the written manifest.
	Digest string `json:"digest,omitempty"`

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that aborted the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text, for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a Run for the given inputs and output.
func NewRun(imageDir, referencePath, outputPath string) *Run {
	return &Run{
		ImageDir:       imageDir,
		ReferencePath:  referencePath,
		OutputPath:     outputPath,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0, 4),
	}
}

// UnidentifiedFiles returns the files whose name yields no identifier.
func (r *Run) UnidentifiedFiles() []ScannedFile {
	out := make([]ScannedFile, 0)
	for _, f := range r.Files {
		if !f.HasIdentifier {
			out = append(out, f)
		}
	}
	return out
}
