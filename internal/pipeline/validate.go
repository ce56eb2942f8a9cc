package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// Validation message headers. Each problem category produces one line.
const (
	msgMissingFields = "The following fields are missing or just contain whitespace: "
	msgShortFields   = "The following fields must be longer than 1 character: "
	msgInvalidFormat = "The following fields are not in a valid format: "
)

// minNameLength is the shortest accepted first or last name.
const minNameLength = 2

var (
	patientIDAllowed = regexp.MustCompile(`^[A-Za-z0-9 \-.#_]+$`)
	alphanumeric     = regexp.MustCompile(`[A-Za-z0-9]`)
	ssnSeparators    = strings.NewReplacer("-", "", " ", "")
)

// compromisedSSNs were published or widely misused and are never accepted.
var compromisedSSNs = map[string]struct{}{
	"078051120": {}, // printed on sample wallet cards
	"219099999": {}, // used in an SSA advertisement
	"457555462": {}, // publicised in identity-protection advertising
}

// ValidationStep checks required fields, name lengths and value formats.
// Every category is evaluated and all failures are reported together.
type ValidationStep struct {
	checkPatientID bool
}

// ValidationStepOption configures a ValidationStep.
type ValidationStepOption func(*ValidationStep)

// WithPatientIDCheck toggles the patient identifier character check.
// It is enabled by default.
func WithPatientIDCheck(enabled bool) ValidationStepOption {
	return func(s *ValidationStep) {
		s.checkPatientID = enabled
	}
}

// NewValidationStep creates a validation step.
func NewValidationStep(opts ...ValidationStepOption) *ValidationStep {
	s := &ValidationStep{checkPatientID: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ValidationStep) Name() string {
	return model.StepValidate.String()
}

// Do validates rec.
func (s *ValidationStep) Do(_ context.Context, rec *model.Record) error {
	if rec.IsInvalid() {
		return nil
	}

	var missing, short, malformed []string

	for _, field := range model.RequiredFields {
		if strings.TrimSpace(rec.Value(field)) == "" {
			missing = append(missing, field)
		}
	}

	for _, field := range []string{model.FieldFirstName, model.FieldLastName} {
		v := strings.TrimSpace(rec.Value(field))
		if v != "" && len([]rune(v)) < minNameLength {
			short = append(short, field)
		}
	}

	if pid := strings.TrimSpace(rec.Value(model.FieldPatientID)); pid != "" && s.checkPatientID && !ValidPatientID(pid) {
		malformed = append(malformed, model.FieldPatientID)
	}
	if dob := strings.TrimSpace(rec.Value(model.FieldDateOfBirth)); dob != "" {
		if _, err := ParseDate(dob); err != nil {
			malformed = append(malformed, model.FieldDateOfBirth)
		}
	}
	if ssn := strings.TrimSpace(rec.Value(model.FieldSSN)); ssn != "" && !ValidSSN(ssn) {
		malformed = append(malformed, model.FieldSSN)
	}

	if len(missing) > 0 {
		rec.Invalidate(msgMissingFields + strings.Join(missing, ", "))
	}
	if len(short) > 0 {
		rec.Invalidate(msgShortFields + strings.Join(short, ", "))
	}
	if len(malformed) > 0 {
		rec.Invalidate(msgInvalidFormat + strings.Join(malformed, ", "))
	}

	if !rec.IsInvalid() {
		rec.MarkCompleted(model.StepValidate)
	}
	return nil
}

// ValidPatientID reports whether id has at least one alphanumeric character
// and only alphanumerics, spaces, '-', '.', '#' and '_'.
func ValidPatientID(id string) bool {
	return patientIDAllowed.MatchString(id) && alphanumeric.MatchString(id)
}

// ValidSSN reports whether ssn is a plausible full or partial Social
// Security Number once '-' and ' ' separators are removed.
func ValidSSN(ssn string) bool {
	digits := ssnSeparators.Replace(strings.TrimSpace(ssn))
	if len(digits) < 4 || len(digits) > 9 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}

	if len(digits) == 9 {
		if allSameDigit(digits) || ascendingDigits(digits) {
			return false
		}
		if _, bad := compromisedSSNs[digits]; bad {
			return false
		}
		area := digits[:3]
		if area == "000" || area == "666" {
			return false
		}
	}

	serial := digits[len(digits)-4:]
	return serial != "0000" && serial != "9999"
}

func allSameDigit(s string) bool {
	return strings.Count(s, s[:1]) == len(s)
}

func ascendingDigits(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]+1 {
			return false
		}
	}
	return true
}
