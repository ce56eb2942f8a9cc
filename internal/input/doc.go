// Package input reads delimited patient files into records.
//
// The header row is mapped to canonical field names through the synonym
// table, so "DOB", "Birth Date" and "date_of_birth" all land in the same
// field. A file that lacks any of the four required columns is rejected
// before the first data row is read. Columns that match no synonym are
// skipped.
package input
