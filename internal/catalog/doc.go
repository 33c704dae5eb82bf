// Package catalog persists per-project build state in SQLite: the project
// record, the per-file content-hash manifest, and a history of builds.
//
// The manifest is what makes incremental runs cheap: comparing the current
// tree's hashes against the stored manifest yields the modified and deleted
// path sets without loading any prior index. One process owns a project's
// catalog at a time.
//
// Two SQLite drivers are supported via build tags. The default build uses the
// pure Go modernc.org/sqlite driver; building with the cgo_sqlite tag selects
// github.com/mattn/go-sqlite3 instead.
package catalog
