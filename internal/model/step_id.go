package model

import "sort"

// StepID identifies a pipeline stage. Steps record their ID on a Record
// once they complete successfully, and later steps use the set as a soft
// precondition check.
type StepID int

const (
	// StepValidate is the validation filter.
	StepValidate StepID = iota + 1
	// StepNormalize is the normalization step.
	StepNormalize
	// StepExclude is the generic-name exclusion step.
	StepExclude
	// StepPermute is the last-name permutation step.
	StepPermute
	// StepHash is the hash derivation step.
	StepHash
	// StepEncrypt is the per-field encryption step.
	StepEncrypt
)

// String returns the step name used in logs and invalid-record messages.
func (s StepID) String() string {
	switch s {
	case StepValidate:
		return "validate"
	case StepNormalize:
		return "normalize"
	case StepExclude:
		return "exclude"
	case StepPermute:
		return "permute"
	case StepHash:
		return "hash"
	case StepEncrypt:
		return "encrypt"
	default:
		return "unknown"
	}
}

// StepSet is the set of completed steps on a Record.
type StepSet map[StepID]struct{}

// Add marks id as completed.
func (s StepSet) Add(id StepID) {
	s[id] = struct{}{}
}

// Has reports whether id has completed.
func (s StepSet) Has(id StepID) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set.
func (s StepSet) Clone() StepSet {
	c := make(StepSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// IDs returns the completed step IDs in pipeline order.
func (s StepSet) IDs() []StepID {
	ids := make([]StepID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
