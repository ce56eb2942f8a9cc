package input

import "errors"

var (
	// ErrMissingRequiredColumns is returned when the header row lacks a
	// required canonical field.
	ErrMissingRequiredColumns = errors.New("input is missing required columns")

	// ErrDuplicateColumn is returned when two header cells map to the same
	// canonical field.
	ErrDuplicateColumn = errors.New("input has duplicate columns")

	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("input is empty")
)
