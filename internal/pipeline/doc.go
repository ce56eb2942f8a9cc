// Package pipeline implements the record-processing stages and the
// sequence that applies them.
//
// A Pipeline is an ordered list of Steps applied to one Record. The fixed
// de-identification sequence is Validate, Normalize, Exclude, Permute,
// Hash and, when per-field encryption is configured, Encrypt. Each Step
// reads and mutates the Record in place, records record-level problems in
// Record.InvalidReason instead of returning errors, and leaves a Record
// that is already invalid untouched.
//
// Steps hold only immutable configuration after construction (salts, rule
// tables, prefix lists), so one Pipeline instance is shared by every
// worker goroutine. A BatchWorker applies the Pipeline to a batch of
// records and is the unit of work scheduled by the engine.
package pipeline
