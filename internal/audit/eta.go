package audit

import (
	"regexp"
	"strings"
	"time"
)

var (
	etaPrefix       = regexp.MustCompile(`(?i)^\s*eta\s*[:\-]\s*`)
	innerWhitespace = regexp.MustCompile(`\s+`)
	eightDigits     = regexp.MustCompile(`^\d{8}$`)
)

// Month-first layouts tried on the first parse pass. Real exports mix ISO,
// US-style and prose dates, with or without a time component.
var monthFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"01-02-2006",
	"01/02/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Day-first layouts tried only on tokens the first pass could not parse.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
}

// CleanETA parses a single heterogeneous date representation into a
// calendar date. Pipeline: strip an optional leading "eta:"/"eta-" label,
// collapse whitespace runs, parse exact 8-digit tokens as YYYYMMDD, then
// try month-first layouts and finally retry day-first. The returned time
// is truncated to the date; the zero time means unparsable or blank.
func CleanETA(raw string) time.Time {
	s := strings.TrimSpace(raw)
	s = etaPrefix.ReplaceAllString(s, "")
	s = innerWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if eightDigits.MatchString(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return truncateToDate(t)
		}
		// Not a valid YYYYMMDD; fall through to the general passes.
	}

	for _, layout := range monthFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDate(t)
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDate(t)
		}
	}
	return time.Time{}
}

// CleanETAs parses a series of raw date values. The unparsable count covers
// non-empty tokens only and feeds the advisory "N of M" data-quality note;
// parsing failures are never fatal.
func CleanETAs(values []string) (dates []time.Time, unparsable int) {
	dates = make([]time.Time, len(values))
	for i, v := range values {
		dates[i] = CleanETA(v)
		if dates[i].IsZero() && strings.TrimSpace(v) != "" {
			unparsable++
		}
	}
	return dates, unparsable
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
