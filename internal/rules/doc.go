// Package rules holds the immutable lookup tables used while processing
// records: the field-tag table mixed into hash strings, the header synonym
// table used to recognise input columns, the name prefix and suffix lists
// stripped during normalization, and the generic-name exception rules.
//
// All tables are built once during engine initialization from an embedded
// YAML default, optionally overridden by a user-supplied file, and then
// shared read-only by every worker. Nothing in this package is lazily
// initialised or mutated after Load returns.
package rules
