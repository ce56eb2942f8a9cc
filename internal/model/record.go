package model

import (
	"strings"
	"time"
)

// Record is one patient row flowing through the pipeline.
//
// Canonical input values live in Fields and hash outputs in Hashes, so a
// metadata name can never collide with a column name. A Record is owned by
// exactly one goroutine at a time: the worker running its batch, then the
// draining goroutine.
type Record struct {
	// RowNumber is the 1-based line number in the input file.
	RowNumber int

	// Fields maps canonical field names to values.
	Fields map[string]string

	// Original holds the field values as read, before any step rewrote
	// them. It is nil until Freeze is called and is shared read-only with
	// derived records.
	Original map[string]string

	// Hashes maps hash output names to uppercase hex digests.
	Hashes map[string]string

	// Encrypted maps hash output names to nonce||ciphertext||tag when
	// per-field encryption is enabled. A name present here has been
	// removed from Hashes.
	Encrypted map[string][]byte

	// InvalidReason accumulates one line per detected problem. A non-empty
	// value routes the record to the invalid-data sink.
	InvalidReason string

	// Warning is informational only.
	Warning string

	// IsException is set when a name matched a generic-name rule.
	IsException bool

	// DerivedRecords are alternate spellings spawned by the permute step.
	DerivedRecords []*Record

	// CompletedSteps records which steps ran successfully.
	CompletedSteps StepSet

	// BirthDate caches the parsed date of birth once the hash step has
	// parsed it.
	BirthDate *time.Time

	derived bool
}

// NewRecord creates an empty Record for the given input row.
func NewRecord(rowNumber int) *Record {
	return &Record{
		RowNumber:      rowNumber,
		Fields:         make(map[string]string),
		Hashes:         make(map[string]string),
		Encrypted:      make(map[string][]byte),
		CompletedSteps: make(StepSet),
	}
}

// Get returns the value of a canonical field and whether it is present.
func (r *Record) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Value returns the value of a canonical field, or "" when absent.
func (r *Record) Value(field string) string {
	return r.Fields[field]
}

// Set stores a canonical field value.
func (r *Record) Set(field, value string) {
	r.Fields[field] = value
}

// Freeze records the current field values as the original input.
func (r *Record) Freeze() {
	r.Original = cloneStrings(r.Fields)
}

// OriginalValue returns the value of field as read from the input. Records
// that were never frozen fall back to the current value.
func (r *Record) OriginalValue(field string) string {
	if r.Original == nil {
		return r.Value(field)
	}
	return r.Original[field]
}

// Invalidate appends reason to InvalidReason on its own line.
func (r *Record) Invalidate(reason string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	if r.InvalidReason == "" {
		r.InvalidReason = reason
		return
	}
	r.InvalidReason += "\n" + reason
}

// IsInvalid reports whether any problem has been recorded.
func (r *Record) IsInvalid() bool {
	return r.InvalidReason != ""
}

// ShouldProcess reports whether the record belongs in the successful output.
func (r *Record) ShouldProcess() bool {
	return !r.IsInvalid()
}

// IsDerived reports whether the record was spawned from a parent.
func (r *Record) IsDerived() bool {
	return r.derived
}

// MarkCompleted records id in CompletedSteps.
func (r *Record) MarkCompleted(id StepID) {
	r.CompletedSteps.Add(id)
}

// HasCompleted reports whether id is in CompletedSteps.
func (r *Record) HasCompleted(id StepID) bool {
	return r.CompletedSteps.Has(id)
}

// Derive returns a deep copy of r marked as derived. Derived records never
// carry their own children.
func (r *Record) Derive() *Record {
	d := &Record{
		RowNumber:      r.RowNumber,
		Fields:         cloneStrings(r.Fields),
		Original:       r.Original,
		Hashes:         cloneStrings(r.Hashes),
		Encrypted:      make(map[string][]byte, len(r.Encrypted)),
		InvalidReason:  r.InvalidReason,
		Warning:        r.Warning,
		IsException:    r.IsException,
		CompletedSteps: r.CompletedSteps.Clone(),
		derived:        true,
	}
	for k, v := range r.Encrypted {
		d.Encrypted[k] = append([]byte(nil), v...)
	}
	if r.BirthDate != nil {
		t := *r.BirthDate
		d.BirthDate = &t
	}
	return d
}

// AddDerived attaches d as a child of r.
func (r *Record) AddDerived(d *Record) {
	d.derived = true
	r.DerivedRecords = append(r.DerivedRecords, d)
}

// DropDerived releases the derived records of r.
func (r *Record) DropDerived() {
	r.DerivedRecords = nil
}

// Walk calls fn for r and then for each derived record. The derived
// records of an invalid record are not visited; they share its fate.
func (r *Record) Walk(fn func(*Record)) {
	fn(r)
	if r.IsInvalid() {
		return
	}
	for _, d := range r.DerivedRecords {
		fn(d)
	}
}

// FlatReason returns InvalidReason on a single line, with line breaks
// replaced by " | ".
func (r *Record) FlatReason() string {
	lines := strings.Split(r.InvalidReason, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " | ")
}

func cloneStrings(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
