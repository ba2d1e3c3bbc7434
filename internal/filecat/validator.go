package filecat

import (
	"fmt"
)

// Rejection reasons, stable strings used as metric labels.
const (
	ReasonUnsupportedType  = "unsupported_type"
	ReasonCategoryMismatch = "category_mismatch"
	ReasonTooLarge         = "too_large"
)

// Rejection is returned when a candidate file fails validation.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

var mimeClasses = map[string]FileClass{
	"application/pdf": ClassPDF,
	"image/jpeg":      ClassImage,
	"image/jpg":       ClassImage,
	"image/png":       ClassImage,
	"image/gif":       ClassImage,
	"image/webp":      ClassImage,
}

// ClassForMIME derives the file class from a MIME type.
func ClassForMIME(mimeType string) (FileClass, bool) {
	class, ok := mimeClasses[mimeType]
	return class, ok
}

// Validate decides whether a candidate file may be attached under the
// chosen category. Rules apply in order and the first failure wins:
// the MIME type must map to a known class, the class must be allowed
// by the category, and the size must not exceed maxSizeBytes. Returns
// nil on acceptance, a *Rejection otherwise.
func Validate(mimeType string, sizeBytes int64, categoryID string, kind OwnerKind, maxSizeBytes int64) error {
	class, ok := ClassForMIME(mimeType)
	if !ok {
		return &Rejection{
			Reason:  ReasonUnsupportedType,
			Message: "ไฟล์ประเภทนี้ไม่รองรับ (รองรับเฉพาะ PDF, JPG, PNG, GIF, WebP)",
		}
	}

	category := GetCategoryInfo(kind, categoryID)
	if !category.Allows(class) {
		return &Rejection{
			Reason:  ReasonCategoryMismatch,
			Message: fmt.Sprintf("หมวดหมู่ %s รองรับ%sเท่านั้น", category.Label, category.AllowedTypesText()),
		}
	}

	if sizeBytes > maxSizeBytes {
		return &Rejection{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("ขนาดไฟล์ต้องไม่เกิน %dMB", maxSizeBytes/(1024*1024)),
		}
	}

	return nil
}
