// Package view implements the list-view logic of the dashboard:
// free-text search, smart filters, type-aware sorting, file grouping
// and the display formatters. Everything here is a pure function over
// in-memory records; fetching is the handlers' job.
package view

import (
	"sort"
	"strings"
	"time"

	"tourdesk/internal/model"
)

// Direction of a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort column and direction of a list view.
// A zero SortState means "no sort": input order is preserved.
type SortState struct {
	Key       string
	Direction Direction
}

// Select implements column-header click semantics: selecting the
// active key flips the direction, selecting a new key resets to
// ascending.
func (s SortState) Select(key string) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// FilterTours returns the tours matching the free-text query, sorted
// per the sort state. The input slice is not modified.
func FilterTours(tours []model.Tour, query string, sortState SortState) []model.Tour {
	out := make([]model.Tour, 0, len(tours))
	for _, t := range tours {
		if matchesQuery(query,
			t.TourName,
			t.SupplierName,
			t.DepartureFrom,
			t.Pier,
			t.Notes,
			t.UpdatedBy,
		) {
			out = append(out, t)
		}
	}
	sortTours(out, sortState)
	return out
}

func sortTours(tours []model.Tour, s SortState) {
	if s.Key == "" {
		return
	}
	sort.SliceStable(tours, func(i, j int) bool {
		c := compareTours(tours[i], tours[j], s.Key)
		if s.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
}

func compareTours(a, b model.Tour, key string) int {
	if isPriceKey(key) {
		return compareFloats(tourPrice(a, key), tourPrice(b, key))
	}
	if isDateKey(key) {
		return compareDates(tourDate(a, key), tourDate(b, key))
	}
	return compareStrings(tourField(a, key), tourField(b, key))
}

func tourPrice(t model.Tour, key string) float64 {
	switch key {
	case "adult_price":
		return t.AdultPrice
	case "child_price":
		return t.ChildPrice
	}
	return 0
}

func tourDate(t model.Tour, key string) *time.Time {
	switch key {
	case "updated_at", "latest_activity":
		return &t.UpdatedAt
	case "created_at":
		return &t.CreatedAt
	case "start_date":
		return t.StartDate
	case "end_date":
		return t.EndDate
	}
	return nil
}

func tourField(t model.Tour, key string) string {
	switch key {
	case "tour_name":
		return t.TourName
	case "supplier_name":
		return t.SupplierName
	case "departure_from":
		return t.DepartureFrom
	case "pier":
		return t.Pier
	case "notes":
		return t.Notes
	case "updated_by":
		return t.UpdatedBy
	}
	return ""
}

func isPriceKey(key string) bool {
	return strings.Contains(key, "price")
}

var dateKeys = map[string]bool{
	"updated_at":      true,
	"created_at":      true,
	"latest_activity": true,
	"start_date":      true,
	"end_date":        true,
}

func isDateKey(key string) bool {
	return dateKeys[key]
}

// matchesQuery reports whether the lower-cased query is a substring of
// at least one field. Empty queries match everything; missing field
// values behave as empty strings.
func matchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareDates orders optional dates. Absent dates sort as the
// smallest value, so they come first ascending and last descending.
func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
