package rules

import (
	"fmt"
	"strings"
)

// Synonyms resolves input header text to canonical field names.
// Lookups are case-insensitive and ignore surrounding whitespace.
type Synonyms struct {
	byHeader map[string]string
}

// NewSynonyms builds a lookup from canonical field name to accepted headers.
// Each canonical name is always accepted as its own synonym.
func NewSynonyms(table map[string][]string) (*Synonyms, error) {
	s := &Synonyms{byHeader: make(map[string]string)}
	for field, headers := range table {
		for _, h := range append([]string{field}, headers...) {
			key := headerKey(h)
			if key == "" {
				continue
			}
			if existing, ok := s.byHeader[key]; ok && existing != field {
				return nil, fmt.Errorf("%w: %q (%s, %s)", ErrConflictingSynonym, h, existing, field)
			}
			s.byHeader[key] = field
		}
	}
	return s, nil
}

// Canonical returns the canonical field for header.
func (s *Synonyms) Canonical(header string) (string, bool) {
	f, ok := s.byHeader[headerKey(header)]
	return f, ok
}

func headerKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}
