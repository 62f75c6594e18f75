// Package normalize provides pure scalar conversion functions for bordereaux
// cell values: dates, decimals and currency codes. None of these functions
// throw; on unparseable input they return a null/zero value so callers can
// decide how to treat it (usually a validation error further down the
// pipeline).
package normalize

import (
	"strings"
	"time"
)

// layouts tried in order; the first match wins. DD/MM takes precedence over
// MM/DD per spec, so the ambiguous slash layouts are listed accordingly.
var dateLayouts = []string{
	"2006-01-02",          // ISO
	"02/01/2006",          // DD/MM/YYYY
	"01/02/2006",          // MM/DD/YYYY
	"02-01-2006",          // DD-MM-YYYY
	"2006/01/02",          // YYYY/MM/DD
	"02.01.2006",          // DD.MM.YYYY
	"2006.01.02",          // YYYY.MM.DD
	"02 January 2006",     // DD Month YYYY
	"02 Jan 2006",         // DD Mon YYYY
	"January 02, 2006",    // Month DD, YYYY
	"Jan 02, 2006",        // Mon DD, YYYY
	"20060102",            // YYYYMMDD
	"02/01/06",            // DD/MM/YY
	"01/02/06",            // MM/DD/YY
}

// ParseDate attempts each layout in dateLayouts in turn and returns the first
// successful parse. Returns the zero Time and ok=false on blank input or if
// no layout matches.
func ParseDate(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateTime is like ParseDate but also tries a handful of common
// datetime layouts before falling back to ParseDate, for values that arrive
// as Excel datetimes rendered as strings.
func ParseDateTime(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return ParseDate(s)
}

// FormatISODate renders t as the canonical YYYY-MM-DD form used for the
// round-trip invariant ParseDate(FormatISODate(d)) == d.
func FormatISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
