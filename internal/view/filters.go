package view

import (
	"sort"
	"time"

	"tourdesk/internal/model"
)

// expiringSoonWindow is how far ahead the expiring_soon filter looks.
const expiringSoonWindow = 30 * 24 * time.Hour

// recentActivityWindow is how far back the recent_activity filter looks.
const recentActivityWindow = 7 * 24 * time.Hour

// SupplierPredicate is one named smart filter over a supplier and its
// tours.
type SupplierPredicate func(s model.Supplier, tours []model.Tour, now time.Time) bool

var supplierFilters = map[string]SupplierPredicate{
	"expiring_soon": func(s model.Supplier, tours []model.Tour, now time.Time) bool {
		for _, t := range tours {
			// Tours without an end date never expire.
			if t.EndDate == nil {
				continue
			}
			if t.EndDate.After(now) && !t.EndDate.After(now.Add(expiringSoonWindow)) {
				return true
			}
		}
		return false
	},
	"no_tours": func(s model.Supplier, tours []model.Tour, now time.Time) bool {
		return len(tours) == 0
	},
	"incomplete_info": func(s model.Supplier, tours []model.Tour, now time.Time) bool {
		return s.Phone == "" && s.Line == ""
	},
	"has_active_promo": func(s model.Supplier, tours []model.Tour, now time.Time) bool {
		for _, t := range tours {
			if t.ParkFeeIncluded {
				return true
			}
		}
		return false
	},
	"recent_activity": func(s model.Supplier, tours []model.Tour, now time.Time) bool {
		return s.UpdatedAt.After(now.Add(-recentActivityWindow))
	},
}

// SupplierFilterIDs lists the known smart filter names.
func SupplierFilterIDs() []string {
	ids := make([]string, 0, len(supplierFilters))
	for id := range supplierFilters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilterSuppliers applies search, smart filters and sorting to a
// supplier list. Every active filter must pass (AND semantics);
// unknown filter IDs are ignored. The input slice is not modified.
func FilterSuppliers(suppliers []model.Supplier, toursBySupplier map[uint][]model.Tour,
	query string, activeFilters []string, sortState SortState, now time.Time) []model.Supplier {

	out := make([]model.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if !matchesQuery(query, s.Name, s.Phone, s.Line, s.Address) {
			continue
		}
		if !passesFilters(s, toursBySupplier[s.ID], activeFilters, now) {
			continue
		}
		out = append(out, s)
	}
	sortSuppliers(out, sortState)
	return out
}

func passesFilters(s model.Supplier, tours []model.Tour, active []string, now time.Time) bool {
	for _, id := range active {
		pred, ok := supplierFilters[id]
		if !ok {
			continue
		}
		if !pred(s, tours, now) {
			return false
		}
	}
	return true
}

func sortSuppliers(suppliers []model.Supplier, s SortState) {
	if s.Key == "" {
		return
	}
	sort.SliceStable(suppliers, func(i, j int) bool {
		c := compareSuppliers(suppliers[i], suppliers[j], s.Key)
		if s.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
}

func compareSuppliers(a, b model.Supplier, key string) int {
	if isDateKey(key) {
		return compareDates(supplierDate(a, key), supplierDate(b, key))
	}
	return compareStrings(supplierField(a, key), supplierField(b, key))
}

func supplierDate(s model.Supplier, key string) *time.Time {
	switch key {
	case "updated_at", "latest_activity":
		return &s.UpdatedAt
	case "created_at":
		return &s.CreatedAt
	}
	return nil
}

func supplierField(s model.Supplier, key string) string {
	switch key {
	case "name":
		return s.Name
	case "phone":
		return s.Phone
	case "line":
		return s.Line
	case "address":
		return s.Address
	case "website":
		return s.Website
	}
	return ""
}

// ToursBySupplier indexes a tour list by supplier for the smart
// filters. Tours without a supplier are skipped.
func ToursBySupplier(tours []model.Tour) map[uint][]model.Tour {
	m := make(map[uint][]model.Tour)
	for _, t := range tours {
		if t.SupplierID == nil {
			continue
		}
		m[*t.SupplierID] = append(m[*t.SupplierID], t)
	}
	return m
}
