package model

import (
	"time"
)

// Supplier represents a business entity that supplies tours. Known as
// "sub agent" in the legacy schema.
type Supplier struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);index;not null"`
	Address   string    `json:"address" gorm:"type:text"`
	Phone     string    `json:"phone" gorm:"type:varchar(50)"`
	Phone2    string    `json:"phone_2" gorm:"type:varchar(50)"`
	Phone3    string    `json:"phone_3" gorm:"type:varchar(50)"`
	Phone4    string    `json:"phone_4" gorm:"type:varchar(50)"`
	Phone5    string    `json:"phone_5" gorm:"type:varchar(50)"`
	Line      string    `json:"line" gorm:"type:varchar(100)"`
	Facebook  string    `json:"facebook" gorm:"type:varchar(255)"`
	Whatsapp  string    `json:"whatsapp" gorm:"type:varchar(50)"`
	Website   string    `json:"website" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
