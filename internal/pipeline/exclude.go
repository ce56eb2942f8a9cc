package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
	"github.com/linkja/linkja-hashing-sub000/internal/rules"
)

// ErrMissingName is returned when a valid record reaches the exclusion step
// without a first or last name field.
var ErrMissingName = errors.New("record has no name field")

// ExclusionStep flags records whose first or last name matches a generic
// or placeholder name. A flagged record is still hashed.
type ExclusionStep struct {
	table *rules.ExceptionTable
}

// NewExclusionStep creates an exclusion step using table.
func NewExclusionStep(table *rules.ExceptionTable) *ExclusionStep {
	return &ExclusionStep{table: table}
}

// Name returns the step name.
func (s *ExclusionStep) Name() string {
	return model.StepExclude.String()
}

// Do sets rec.IsException when a name matches a rule.
func (s *ExclusionStep) Do(_ context.Context, rec *model.Record) error {
	if rec.IsInvalid() {
		return nil
	}

	first, ok := rec.Get(model.FieldFirstName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingName, model.FieldFirstName)
	}
	last, ok := rec.Get(model.FieldLastName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingName, model.FieldLastName)
	}

	if s.table.Matches(first) || s.table.Matches(last) {
		rec.IsException = true
	}

	rec.MarkCompleted(model.StepExclude)
	return nil
}
