package rules

import (
	"fmt"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// taggedFields are the names every field-tag table must define.
var taggedFields = []string{
	model.FieldPatientID,
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldDateOfBirth,
	model.FieldSSN,
	model.FieldSiteID,
	model.FieldDateOffset,
	model.FieldPrivateSalt,
	model.FieldProjectSalt,
}

// FieldTags maps a canonical field name to the short tag written in front
// of its value inside a hash string. Every site hashing for the same
// project must use the same table.
type FieldTags struct {
	tags map[string]string
}

// NewFieldTags validates tags and returns an immutable table.
func NewFieldTags(tags map[string]string) (*FieldTags, error) {
	t := &FieldTags{tags: make(map[string]string, len(tags))}
	for k, v := range tags {
		t.tags[k] = v
	}
	for _, f := range taggedFields {
		if t.tags[f] == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingTag, f)
		}
	}
	return t, nil
}

// Tag returns the tag for field, or "" if none is defined.
func (t *FieldTags) Tag(field string) string {
	return t.tags[field]
}
