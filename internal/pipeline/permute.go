package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

var lastNameSplitter = regexp.MustCompile(`[ \-]+`)

// PermuteStep spawns alternate records for compound last names so that
// "SMITH-OLSON" can also match records filed under "SMITH" or "OLSON".
// Only the first and last tokens are used.
type PermuteStep struct{}

// NewPermuteStep creates a permute step.
func NewPermuteStep() *PermuteStep {
	return &PermuteStep{}
}

// Name returns the step name.
func (s *PermuteStep) Name() string {
	return model.StepPermute.String()
}

// Do derives last-name variants of a top-level record and leaves both
// names letters-only.
func (s *PermuteStep) Do(_ context.Context, rec *model.Record) error {
	if rec.IsInvalid() || rec.IsDerived() {
		return nil
	}

	rec.Set(model.FieldFirstName, lettersOnly(rec.Value(model.FieldFirstName)))

	if len(rec.DerivedRecords) == 0 {
		tokens := splitLastName(rec.Value(model.FieldLastName))
		if len(tokens) > 1 {
			first := lettersOnly(tokens[0])
			last := lettersOnly(tokens[len(tokens)-1])
			if len(first) >= minNameLength {
				rec.AddDerived(s.derive(rec, first))
			}
			if len(last) >= minNameLength && last != first {
				rec.AddDerived(s.derive(rec, last))
			}
		}
	}

	rec.Set(model.FieldLastName, lettersOnly(rec.Value(model.FieldLastName)))

	rec.MarkCompleted(model.StepPermute)
	return nil
}

func (s *PermuteStep) derive(parent *model.Record, lastName string) *model.Record {
	d := parent.Derive()
	d.Set(model.FieldLastName, lastName)
	d.MarkCompleted(model.StepPermute)
	return d
}

func splitLastName(v string) []string {
	parts := lastNameSplitter.Split(strings.TrimSpace(v), -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func lettersOnly(v string) string {
	return nonLetters.ReplaceAllString(upper(v), "")
}
