package model

import (
	"time"
)

// Tour represents a priced offering from a supplier, valid over an
// optional date range. A nil EndDate means the price never expires.
type Tour struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	TourName        string     `json:"tour_name" gorm:"type:varchar(255);index;not null"`
	SupplierID      *uint      `json:"supplier_id" gorm:"index"`
	DepartureFrom   string     `json:"departure_from" gorm:"type:varchar(100)"`
	Pier            string     `json:"pier" gorm:"type:varchar(100)"`
	AdultPrice      float64    `json:"adult_price" gorm:"type:decimal(10,2);default:0"`
	ChildPrice      float64    `json:"child_price" gorm:"type:decimal(10,2);default:0"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Notes           string     `json:"notes" gorm:"type:text"`
	ParkFeeIncluded bool       `json:"park_fee_included" gorm:"default:false"`
	MapURL          string     `json:"map_url" gorm:"type:text"`
	UpdatedBy       string     `json:"updated_by" gorm:"type:varchar(100)"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Supplier *Supplier `json:"-" gorm:"foreignKey:SupplierID"`

	// SupplierName is denormalized for list views and search; filled
	// from the preloaded association after query.
	SupplierName string `json:"supplier_name" gorm:"-"`
}
