package model

// Suggestion backs the autocomplete endpoint. UsageCount is bumped
// every time a tour is saved with the value, so frequent entries rank
// first.
type Suggestion struct {
	ID         uint   `json:"-" gorm:"primaryKey"`
	Field      string `json:"-" gorm:"type:varchar(50);uniqueIndex:idx_field_value;not null"`
	Value      string `json:"value" gorm:"type:varchar(255);uniqueIndex:idx_field_value;not null"`
	UsageCount int    `json:"usage_count" gorm:"default:0"`
}
