// Package reference loads the phenotype reference table.
//
// The table is delimited text (tab-separated by default) with a header row.
// Only two columns are kept: the subject identifier and the diagnosis.
// Every other column is discarded while reading.
package reference
