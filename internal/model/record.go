package model

import "strconv"

// ScannedFile is one entry of the image directory.
type ScannedFile struct {
	// Identifier is the subject identifier parsed from Filename.
	// It is only meaningful when HasIdentifier is true.
	Identifier int64 `json:"identifier"`

	// HasIdentifier is false when the filename holds no digit run
	// longer than one character. Such files never join.
	HasIdentifier bool `json:"has_identifier"`

	// Filename is the base name of the entry, without directory.
	Filename string `json:"filename"`
}

// ReferenceRow is one subject of the phenotype table, reduced to the two
// columns the manifest needs.
type ReferenceRow struct {
	// Identifier is the subject identifier column.
	Identifier int64 `json:"identifier"`

	// Diagnosis is the raw diagnosis cell: a numeric code such as "0" or
	// "3", or the pending sentinel.
	Diagnosis string `json:"diagnosis"`

	// Line is the 1-based line of the row in the source file.
	Line int `json:"line"`
}

// ManifestRow is one record of the output manifest.
// Diagnosis is always LabelNegative or LabelPositive.
type ManifestRow struct {
	Identifier int64  `json:"identifier"`
	Diagnosis  Label  `json:"diagnosis"`
	Filename   string `json:"filename"`
}

// ManifestHeader is the header row of the manifest CSV, in column order.
var ManifestHeader = []string{"identifier", "diagnosis", "filename"}

// Record returns the row as CSV fields in ManifestHeader order.
func (r ManifestRow) Record() []string {
	return []string{
		strconv.FormatInt(r.Identifier, 10),
		strconv.Itoa(int(r.Diagnosis)),
		r.Filename,
	}
}
