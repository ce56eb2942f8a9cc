package pipeline

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/linkja/linkja-hashing-sub000/internal/model"
)

// placeholderSSNSuffix marks an SSN whose last four digits carry no information.
const placeholderSSNSuffix = "0000"

var (
	multiSpace        = regexp.MustCompile(`\s{2,}`)
	nonLetters        = regexp.MustCompile(`[^A-Z]`)
	nonLettersOrSpace = regexp.MustCompile(`[^A-Z ]`)
	nonDigits         = regexp.MustCompile(`[^0-9]`)
)

// NormalizationStep canonicalises names, SSN and date of birth so that
// equivalent spellings hash identically. Other fields pass through.
type NormalizationStep struct {
	prefixes []string
	suffixes []string
}

// NewNormalizationStep creates a normalization step. Prefixes and suffixes
// are tried in order and at most one of each is removed; they are compared
// after uppercasing, so they are uppercased here.
func NewNormalizationStep(prefixes, suffixes []string) *NormalizationStep {
	return &NormalizationStep{
		prefixes: upperAll(prefixes),
		suffixes: upperAll(suffixes),
	}
}

// Name returns the step name.
func (s *NormalizationStep) Name() string {
	return model.StepNormalize.String()
}

// Do normalizes rec.
func (s *NormalizationStep) Do(_ context.Context, rec *model.Record) error {
	if rec.IsInvalid() {
		return nil
	}

	if v, ok := rec.Get(model.FieldFirstName); ok {
		rec.Set(model.FieldFirstName, s.NormalizeName(v, false))
	}
	if v, ok := rec.Get(model.FieldLastName); ok {
		rec.Set(model.FieldLastName, s.NormalizeName(v, true))
	}
	if v, ok := rec.Get(model.FieldSSN); ok {
		rec.Set(model.FieldSSN, NormalizeSSN(v))
	}
	if v, ok := rec.Get(model.FieldDateOfBirth); ok {
		rec.Set(model.FieldDateOfBirth, NormalizeDate(v))
	}

	rec.MarkCompleted(model.StepNormalize)
	return nil
}

// NormalizeName uppercases a name, collapses separators, removes one
// prefix and one suffix, and drops everything but A-Z. Spaces survive when
// keepSpaces is set so the permute step can split compound last names.
func (s *NormalizationStep) NormalizeName(value string, keepSpaces bool) string {
	v := upper(value)
	v = collapseSeparators(v)
	v = stripPrefix(v, s.prefixes)
	v = stripSuffix(v, s.suffixes)
	if keepSpaces {
		v = nonLettersOrSpace.ReplaceAllString(v, "")
		v = multiSpace.ReplaceAllString(v, " ")
	} else {
		v = nonLetters.ReplaceAllString(v, "")
	}
	return strings.TrimSpace(v)
}

// NormalizeSSN keeps the rightmost four digits. Fewer than four digits, or
// a "0000" serial, yields "".
func NormalizeSSN(value string) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) < 4 {
		return ""
	}
	last4 := digits[len(digits)-4:]
	if last4 == placeholderSSNSuffix {
		return ""
	}
	return last4
}

// NormalizeDate re-emits a parseable date as YYYY-MM-DD. Unparseable
// values are returned trimmed; validation has already rejected them.
func NormalizeDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return FormatDate(t)
}

// collapseSeparators turns hyphens into spaces and squeezes runs of
// whitespace until the value stops changing.
func collapseSeparators(v string) string {
	for {
		next := strings.ReplaceAll(v, "-", " ")
		next = multiSpace.ReplaceAllString(next, " ")
		if next == v {
			return strings.TrimSpace(v)
		}
		v = next
	}
}

func stripPrefix(v string, prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(v, p) {
			return strings.TrimSpace(v[len(p):])
		}
	}
	return v
}

func stripSuffix(v string, suffixes []string) string {
	for _, sfx := range suffixes {
		if sfx != "" && strings.HasSuffix(v, sfx) {
			return strings.TrimSpace(v[:len(v)-len(sfx)])
		}
	}
	return v
}

// upper trims and uppercases v. A Caser is not safe for concurrent use, so
// one is created per call.
func upper(v string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(v))
}

func upperAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cases.Upper(language.Und).String(v)
	}
	return out
}
