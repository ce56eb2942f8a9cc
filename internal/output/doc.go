// Package output writes the files produced by a hashing run.
//
// A run produces a hash file for transmission, a crosswalk that links
// local patient IDs to PIDHASH values and never leaves the site, an
// invalid-data file and, on request, a debug file with the unhashed
// values beside their hashes. All of them are created through a FileSet
// so a failed run can remove every file it started.
//
// Sinks are not safe for concurrent use; a run writes them from a single
// goroutine.
package output
