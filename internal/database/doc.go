// Package database provides SQLite-based run history for dxmanifest.
//
// Every build can be recorded as a run summary: inputs, per-stage counts
// and the digest of the written manifest. The history lets the CLI tell
// whether a rebuild changed the manifest and lets users list past builds.
//
// The database is a single file, dxmanifest.db, opened with the CGO-free
// modernc.org/sqlite driver.
package database
