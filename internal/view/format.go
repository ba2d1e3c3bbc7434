package view

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatCurrency renders a baht amount with comma grouping. Whole
// amounts drop the decimals.
func FormatCurrency(v float64) string {
	neg := v < 0
	v = math.Abs(v)

	var s string
	if v == math.Trunc(v) {
		s = fmt.Sprintf("%.0f", v)
	} else {
		s = fmt.Sprintf("%.2f", v)
	}

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "฿" + b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDisplayDate renders an optional date as dd/mm/yyyy, "-" when
// absent.
func FormatDisplayDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

// FormatFileSize renders a byte count for display, matching the
// precomputed file_size_formatted strings in the legacy data.
func FormatFileSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(kb))
	}
	return fmt.Sprintf("%d B", bytes)
}

// NotesWithExpiry appends an expiry warning to a tour's notes when its
// end date is past or within the expiring-soon window.
func NotesWithExpiry(notes string, end *time.Time, now time.Time) string {
	if end == nil {
		return notes
	}

	var warning string
	switch {
	case end.Before(now):
		warning = fmt.Sprintf("⚠️ ราคานี้หมดอายุแล้ว (%s)", end.Format("02/01/2006"))
	case !end.After(now.Add(expiringSoonWindow)):
		warning = fmt.Sprintf("⚠️ ราคานี้จะหมดอายุ %s", end.Format("02/01/2006"))
	default:
		return notes
	}

	if notes == "" {
		return warning
	}
	return notes + "\n" + warning
}
