// Package model defines the core data structures used throughout dxmanifest.
//
// This package contains the following main types:
//   - ScannedFile: A directory entry and the subject identifier parsed from its name
//   - ReferenceRow: One subject of the phenotype reference table
//   - ManifestRow: One record of the output manifest
//   - Run: The state shared by the pipeline steps of a single build
//   - Summary: Counts and metadata describing a finished build
//
// Models live in their own package because the scanner, reference loader,
// manifest, report and database packages all exchange them.
package model
