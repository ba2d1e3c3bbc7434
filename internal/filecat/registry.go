// Package filecat holds the file category registries for tour and
// supplier attachments and the upload validation rules applied before
// a file is accepted.
package filecat

// OwnerKind distinguishes the two registries.
type OwnerKind string

const (
	OwnerTour     OwnerKind = "tour"
	OwnerSupplier OwnerKind = "supplier"
)

// FileClass is the coarse type derived from a MIME type.
type FileClass string

const (
	ClassPDF   FileClass = "pdf"
	ClassImage FileClass = "image"
)

// Category IDs. "general" exists for both owner kinds and doubles as
// the fallback for unknown IDs.
const (
	CategoryGallery     = "gallery"
	CategoryBrochure    = "brochure"
	CategoryGeneral     = "general"
	CategoryContactRate = "contact_rate"
	CategoryQRCode      = "qr_code"
)

// CategoryInfo describes one category entry.
type CategoryInfo struct {
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	Description  string      `json:"description"`
	AllowedTypes []FileClass `json:"allowed_types"`
	Examples     []string    `json:"examples"`
	Color        string      `json:"color"`
}

// Allows reports whether the category accepts the given file class.
func (ci CategoryInfo) Allows(class FileClass) bool {
	for _, t := range ci.AllowedTypes {
		if t == class {
			return true
		}
	}
	return false
}

// AllowedTypesText renders the category's allowed types as the
// user-facing Thai phrase.
func (ci CategoryInfo) AllowedTypesText() string {
	pdf := ci.Allows(ClassPDF)
	image := ci.Allows(ClassImage)
	switch {
	case pdf && image:
		return "PDF และรูปภาพ"
	case pdf:
		return "เฉพาะ PDF"
	default:
		return "เฉพาะรูปภาพ"
	}
}

// Registries are ordered; the order defines the default display
// position for categories outside the fixed priority sequence.
var registries = map[OwnerKind][]CategoryInfo{
	OwnerTour: {
		{
			ID:           CategoryGallery,
			Label:        "แกลเลอรี่",
			Description:  "รูปภาพสถานที่และกิจกรรมของทัวร์",
			AllowedTypes: []FileClass{ClassImage},
			Examples:     []string{"รูปหน้าปก", "รูปกิจกรรม", "รูปสถานที่"},
			Color:        "blue",
		},
		{
			ID:           CategoryBrochure,
			Label:        "โบรชัวร์",
			Description:  "เอกสารแนะนำโปรแกรมทัวร์",
			AllowedTypes: []FileClass{ClassPDF, ClassImage},
			Examples:     []string{"โบรชัวร์โปรแกรม", "ใบราคา"},
			Color:        "green",
		},
		{
			ID:           CategoryGeneral,
			Label:        "เอกสารทั่วไป",
			Description:  "เอกสารอื่น ๆ ที่เกี่ยวข้องกับทัวร์",
			AllowedTypes: []FileClass{ClassPDF, ClassImage},
			Examples:     []string{"เงื่อนไขการเดินทาง", "แผนที่จุดนัดพบ"},
			Color:        "gray",
		},
	},
	OwnerSupplier: {
		{
			ID:           CategoryContactRate,
			Label:        "Contact Rate",
			Description:  "เอกสารราคาจากซัพพลายเออร์",
			AllowedTypes: []FileClass{ClassPDF, ClassImage},
			Examples:     []string{"ตารางราคา", "สัญญาราคา"},
			Color:        "orange",
		},
		{
			ID:           CategoryQRCode,
			Label:        "QR Code",
			Description:  "QR Code สำหรับติดต่อหรือชำระเงิน",
			AllowedTypes: []FileClass{ClassImage},
			Examples:     []string{"QR พร้อมเพย์", "QR Line"},
			Color:        "purple",
		},
		{
			ID:           CategoryGeneral,
			Label:        "เอกสารทั่วไป",
			Description:  "เอกสารอื่น ๆ ของซัพพลายเออร์",
			AllowedTypes: []FileClass{ClassPDF, ClassImage},
			Examples:     []string{"หนังสือรับรอง", "เอกสารประกอบ"},
			Color:        "gray",
		},
	},
}

// Categories returns the ordered category list for an owner kind.
func Categories(kind OwnerKind) []CategoryInfo {
	return registries[kind]
}

// GetCategoryInfo returns the entry for categoryID. Unknown or absent
// IDs degrade to the "general" entry of that kind; this never fails.
func GetCategoryInfo(kind OwnerKind, categoryID string) CategoryInfo {
	var general CategoryInfo
	for _, ci := range registries[kind] {
		if ci.ID == categoryID {
			return ci
		}
		if ci.ID == CategoryGeneral {
			general = ci
		}
	}
	return general
}

// IsValidCategory reports whether categoryID exists for the owner kind.
func IsValidCategory(kind OwnerKind, categoryID string) bool {
	for _, ci := range registries[kind] {
		if ci.ID == categoryID {
			return true
		}
	}
	return false
}

// CategoryHints bundles what the upload form shows for a category.
type CategoryHints struct {
	Description      string      `json:"description"`
	Examples         []string    `json:"examples"`
	AllowedTypes     []FileClass `json:"allowed_types"`
	AllowedTypesText string      `json:"allowed_types_text"`
}

// GetCategoryHints returns display hints for a category, falling back
// to "general" the same way GetCategoryInfo does.
func GetCategoryHints(kind OwnerKind, categoryID string) CategoryHints {
	ci := GetCategoryInfo(kind, categoryID)
	return CategoryHints{
		Description:      ci.Description,
		Examples:         ci.Examples,
		AllowedTypes:     ci.AllowedTypes,
		AllowedTypesText: ci.AllowedTypesText(),
	}
}
