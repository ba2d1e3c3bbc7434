package model

import (
	"time"
)

// Owner kinds for file attachments.
const (
	OwnerTour     = "tour"
	OwnerSupplier = "supplier"
)

// FileAttachment is a document or image attached to a tour or a
// supplier. FileCategory must belong to the category registry of the
// owner kind; FileType is derived from the MIME type at upload time.
type FileAttachment struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	OwnerKind         string    `json:"owner_kind" gorm:"type:varchar(20);index:idx_owner;not null"`
	OwnerID           uint      `json:"owner_id" gorm:"index:idx_owner;not null"`
	FileCategory      string    `json:"file_category" gorm:"type:varchar(50);not null"`
	FileType          string    `json:"file_type" gorm:"type:varchar(10);not null"`
	OriginalName      string    `json:"original_name" gorm:"type:varchar(255)"`
	Label             *string   `json:"label,omitempty" gorm:"type:varchar(100)"`
	FilePath          string    `json:"file_path" gorm:"type:varchar(500);not null"`
	FileSizeFormatted string    `json:"file_size_formatted" gorm:"type:varchar(20)"`
	UploadedBy        string    `json:"uploaded_by" gorm:"type:varchar(100)"`
	UploadedAt        time.Time `json:"uploaded_at"`
}
