package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrNoImageDir is returned when no image directory is configured.
	ErrNoImageDir = errors.New("no image directory specified: use --image-dir or set imageDir in the config file")

	// ErrNoReference is returned when no reference table is configured.
	ErrNoReference = errors.New("no reference table specified: use --reference or set reference in the config file")

	// ErrInvalidOutputName is returned when the output name is empty or
	// contains a path separator.
	ErrInvalidOutputName = errors.New("invalid output name: must be a plain file name (use --output-dir for the directory)")

	// ErrEmptyColumn is returned when a column name is blank.
	ErrEmptyColumn = errors.New("invalid column name: identifier and diagnosis columns must not be empty")

	// ErrSameColumn is returned when both columns have the same name.
	ErrSameColumn = errors.New("invalid column names: identifier and diagnosis columns must differ")

	// ErrEmptyPendingValue is returned when the pending sentinel is empty.
	ErrEmptyPendingValue = errors.New("invalid pending value: must not be empty")

	// ErrInvalidSelection is returned for an unknown identifier selection rule.
	ErrInvalidSelection = errors.New("invalid selection: must be \"longest\" or \"last\"")

	// ErrInvalidDelimiter is returned when the delimiter is not a single
	// usable character.
	ErrInvalidDelimiter = errors.New("invalid delimiter: must be a single character other than a quote or line break")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
