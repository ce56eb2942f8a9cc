package engine

import "time"

// Summary reports what a run did. It never holds identifiers or secrets.
type Summary struct {
	RunID      string    `json:"run_id"`
	State      string    `json:"state"`
	SiteID     string    `json:"site_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// InputRecords counts rows read from the input.
	InputRecords int `json:"input_records"`

	// HashedRecords counts rows written to the hash file, derived
	// records included.
	HashedRecords int `json:"hashed_records"`

	// InvalidRecords counts rows written to the invalid-data file,
	// derived records included.
	InvalidRecords int `json:"invalid_records"`

	DerivedRecords   int `json:"derived_records"`
	ExceptionRecords int `json:"exception_records"`

	SubmittedBatches int `json:"submitted_batches"`
	CompletedBatches int `json:"completed_batches"`

	// InlineBatches counts batches the streaming goroutine ran itself
	// because the queue was full.
	InlineBatches int `json:"inline_batches"`

	// Trusted is false when the output is complete but the batch counts
	// did not reconcile.
	Trusted bool `json:"trusted"`

	Files []string `json:"files,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
