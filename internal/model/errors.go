package model

import "errors"

// Error kinds shared by every stage of a build.
// Stage errors wrap exactly one of them, so callers can classify a failure
// with errors.Is regardless of which package produced it.
var (
	// ErrIO is returned when a path is missing, unreadable or not writable.
	ErrIO = errors.New("i/o error")

	// ErrParse is returned when the reference table is malformed.
	ErrParse = errors.New("parse error")

	// ErrValue is returned when a diagnosis code is not an integer.
	ErrValue = errors.New("value error")
)
