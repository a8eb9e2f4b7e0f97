// Package manifest joins scanned files to the reference table, filters and
// binarizes diagnoses, and writes the resulting manifest CSV.
package manifest
