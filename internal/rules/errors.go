package rules

import "errors"

// Rule table errors.
var (
	// ErrDuplicateRule is returned when two exception rules share a name.
	ErrDuplicateRule = errors.New("duplicate exception rule")

	// ErrBlankRuleName is returned when an exception rule has no name.
	ErrBlankRuleName = errors.New("exception rule name is blank")

	// ErrUnknownMatchMode is returned for a match mode other than exact or partial.
	ErrUnknownMatchMode = errors.New("unknown exception match mode")

	// ErrMissingTag is returned when the field-tag table lacks a required tag.
	ErrMissingTag = errors.New("field tag table is missing a tag")

	// ErrConflictingSynonym is returned when one header maps to two canonical fields.
	ErrConflictingSynonym = errors.New("header synonym maps to more than one field")
)
