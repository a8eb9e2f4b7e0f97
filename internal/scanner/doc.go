// Package scanner lists an image directory and derives a subject
// identifier from each filename.
//
// An identifier is a run of decimal digits in the filename. Runs of a
// single digit are never identifiers (they are usually session or echo
// numbers), and when several runs qualify the Selection rule picks one:
//
//	sub-0010_ses-1_rest.nii.gz   -> 10
//	a12_34b.nii                  -> 34  (equal length, last run wins)
//	scan_7.nii                   -> none
//
// Directory entries are visited in lexical order so that a listing, and
// therefore the manifest built from it, is reproducible across platforms.
package scanner
