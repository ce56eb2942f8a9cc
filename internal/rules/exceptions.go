package rules

import (
	"fmt"
	"strings"
)

// MatchMode selects how an exception rule is compared with a name.
type MatchMode string

const (
	// MatchExact flags a name equal to the rule name.
	MatchExact MatchMode = "exact"

	// MatchPartial flags a name containing the rule name as a whole
	// space-delimited token, but not a name equal to it.
	MatchPartial MatchMode = "partial"
)

// ExceptionRule is one generic or placeholder name.
type ExceptionRule struct {
	Name  string    `yaml:"name"`
	Match MatchMode `yaml:"match"`
}

// ExceptionTable is an immutable set of exception rules keyed by name.
type ExceptionTable struct {
	rules map[string]MatchMode
}

// NewExceptionTable validates rules and builds the table. Names are
// uppercased and trimmed so they compare against normalized names.
func NewExceptionTable(rules []ExceptionRule) (*ExceptionTable, error) {
	t := &ExceptionTable{rules: make(map[string]MatchMode, len(rules))}
	for i, r := range rules {
		name := strings.ToUpper(strings.TrimSpace(r.Name))
		if name == "" {
			return nil, fmt.Errorf("%w (entry %d)", ErrBlankRuleName, i+1)
		}
		mode := MatchMode(strings.ToLower(strings.TrimSpace(string(r.Match))))
		if mode != MatchExact && mode != MatchPartial {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownMatchMode, r.Match, name)
		}
		if _, ok := t.rules[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, name)
		}
		t.rules[name] = mode
	}
	return t, nil
}

// Len returns the number of rules.
func (t *ExceptionTable) Len() int {
	return len(t.rules)
}

// Matches reports whether value triggers any rule.
func (t *ExceptionTable) Matches(value string) bool {
	for name, mode := range t.rules {
		switch mode {
		case MatchExact:
			if value == name {
				return true
			}
		case MatchPartial:
			if strings.HasPrefix(value, name+" ") ||
				strings.HasSuffix(value, " "+name) ||
				strings.Contains(value, " "+name+" ") {
				return true
			}
		}
	}
	return false
}
