package model

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseLegacyDate normalizes a date string from the legacy schema into
// an optional date. Empty strings and the MySQL zero-date sentinel
// "0000-00-00" both mean "no date"; this is the only place the
// sentinel is ever checked.
func ParseLegacyDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "0000-00-00" || strings.EqualFold(s, "null") {
		return nil
	}
	// Tolerate a trailing time component ("2024-01-01 00:00:00").
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders an optional date for the wire, empty when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
