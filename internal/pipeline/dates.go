package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a value matches none of the accepted
// date layouts.
var ErrInvalidDate = errors.New("unrecognized date")

// canonicalDateLayout is the layout dates are re-emitted in and hashed with.
const canonicalDateLayout = "2006-01-02"

// dateLayouts is built once at package initialization and never modified.
var dateLayouts = buildDateLayouts()

// buildDateLayouts enumerates year-first, month-first and compact dates
// with "/", "-" or " " separators, each optionally followed by a time.
// time.Parse rejects out-of-range days, so Feb 30 never rolls over.
func buildDateLayouts() []string {
	var dates []string
	for _, sep := range []string{"/", "-", " "} {
		dates = append(dates,
			"2006"+sep+"1"+sep+"2",
			"1"+sep+"2"+sep+"2006",
		)
	}
	dates = append(dates, "20060102", "01022006")

	times := []string{
		"",
		" 15:04",
		" 15:04:05",
		" 15:04:05.000",
		" 3:04 PM",
		" 3:04:05 PM",
		"T15:04",
		"T15:04:05",
	}

	layouts := make([]string, 0, len(dates)*len(times))
	for _, d := range dates {
		for _, t := range times {
			layouts = append(layouts, d+t)
		}
	}
	return layouts
}

// ParseDate parses value under the accepted layouts and returns the date
// at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(canonicalDateLayout)
}

// formatTransposedDate renders t as YYYY-DD-MM.
func formatTransposedDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Day(), int(t.Month()))
}

// addOneYear adds a calendar year, clamping Feb 29 to Feb 28 instead of
// rolling into March.
func addOneYear(t time.Time) time.Time {
	next := t.AddDate(1, 0, 0)
	if next.Day() != t.Day() {
		return time.Date(t.Year()+1, t.Month(), 28, 0, 0, 0, 0, time.UTC)
	}
	return next
}

const secondsPerDay = 24 * 60 * 60

// daysBetween returns the whole days from start to end. Both are truncated
// to UTC midnight, so the span is always a multiple of a day. It must not
// go through time.Duration, which saturates at about 292 years.
func daysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int((e.Unix() - s.Unix()) / secondsPerDay)
}
