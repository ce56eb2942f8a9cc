package engine

import "errors"

var (
	// ErrDuplicatePatientID is returned when two input rows share a
	// non-blank patient identifier. The run is rolled back.
	ErrDuplicatePatientID = errors.New("duplicate patient identifier")

	// ErrBatchMismatch is returned when fewer batches completed than were
	// submitted. The output files are kept but must not be trusted.
	ErrBatchMismatch = errors.New("submitted and completed batch counts differ")

	// ErrAlreadyRun is returned when Run is called a second time.
	ErrAlreadyRun = errors.New("engine has already run")
)
