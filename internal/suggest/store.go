// Package suggest implements autocomplete: a usage-ranked suggestion
// store behind the API, and the debounced input controller used by
// clients of that API.
package suggest

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourdesk/internal/model"
)

// Fields that accumulate suggestions.
const (
	FieldDepartureFrom = "departure_from"
	FieldPier          = "pier"
)

// Item is one ranked suggestion.
type Item struct {
	Value      string `json:"value"`
	UsageCount int    `json:"usage_count"`
}

// Store reads and updates the suggestion table.
type Store struct {
	db *gorm.DB
}

// NewStore returns a store bound to the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Suggestions returns up to limit prefix matches for a field, most
// used first.
func (s *Store) Suggestions(ctx context.Context, field, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []model.Suggestion
	err := s.db.WithContext(ctx).
		Where("field = ? AND LOWER(value) LIKE ?", field, strings.ToLower(strings.TrimSpace(query))+"%").
		Order("usage_count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item{Value: r.Value, UsageCount: r.UsageCount})
	}
	return items, nil
}

// RecordUsage bumps the usage count for a value, inserting it on first
// use. Blank values are ignored.
func (s *Store) RecordUsage(ctx context.Context, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field"}, {Name: "value"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"usage_count": gorm.Expr("usage_count + 1")}),
		}).
		Create(&model.Suggestion{Field: field, Value: value, UsageCount: 1}).Error
}
