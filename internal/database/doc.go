// Package database keeps a local history of hashing runs in SQLite.
//
// Each run stores its engine summary: run ID, final state, site and
// project IDs, timings, record counts and output file names. No row
// values, hashes or secrets are ever written here, so the history can be
// kept outside the protected output directory.
//
// The database uses modernc.org/sqlite, a CGO-free driver, in WAL mode
// with a single writer connection.
package database
