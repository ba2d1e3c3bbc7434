package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tourdesk/internal/filecat"
	"tourdesk/internal/model"
	"tourdesk/internal/session"
	"tourdesk/internal/view"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"
)

// FileURL builds the public download URL for a stored file. The rule
// is fixed for compatibility with existing clients:
// trimTrailingSlash(base) + "/" + file_path.
func FileURL(baseURL, filePath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + filePath
}

// fileResponse decorates an attachment with its download URL.
func fileResponse(f model.FileAttachment) echo.Map {
	return echo.Map{
		"id":                  f.ID,
		"owner_kind":          f.OwnerKind,
		"owner_id":            f.OwnerID,
		"file_category":       f.FileCategory,
		"file_type":           f.FileType,
		"original_name":       f.OriginalName,
		"label":               f.Label,
		"file_path":           f.FilePath,
		"file_url":            FileURL(cfg.Server.APIBaseURL, f.FilePath),
		"file_size_formatted": f.FileSizeFormatted,
		"uploaded_by":         f.UploadedBy,
		"uploaded_at":         f.UploadedAt,
	}
}

// ListTourFiles retrieves a tour's files, optionally by category
func ListTourFiles(c echo.Context) error {
	return listFiles(c, filecat.OwnerTour)
}

// ListSupplierFiles retrieves a supplier's files, optionally by category
func ListSupplierFiles(c echo.Context) error {
	return listFiles(c, filecat.OwnerSupplier)
}

func listFiles(c echo.Context, kind filecat.OwnerKind) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid owner ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().
		Where("owner_kind = ? AND owner_id = ?", string(kind), id).
		Order("uploaded_at desc")
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("file_category = ?", category)
	}

	var files []model.FileAttachment
	if result := query.Find(&files); result.Error != nil {
		log.Error("Failed to retrieve files",
			zap.String("owner_kind", string(kind)),
			zap.Uint64("owner_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการโหลดไฟล์: " + result.Error.Error(),
		})
	}

	out := make([]echo.Map, 0, len(files))
	for _, f := range files {
		out = append(out, fileResponse(f))
	}
	return c.JSON(http.StatusOK, echo.Map{"files": out})
}

// GroupedTourFiles merges a tour's files with its supplier's shared
// files and returns the ordered display groups.
func GroupedTourFiles(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tour ID"})
	}

	var tour model.Tour
	if result := database.GetDB().First(&tour, id); result.Error != nil {
		log.Warn("Tour not found for file grouping", zap.Uint64("tour_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลทัวร์"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tourFiles []model.FileAttachment
	database.GetDB().
		Where("owner_kind = ? AND owner_id = ?", model.OwnerTour, tour.ID).
		Find(&tourFiles)

	var supplierFiles []model.FileAttachment
	if tour.SupplierID != nil {
		database.GetDB().
			Where("owner_kind = ? AND owner_id = ?", model.OwnerSupplier, *tour.SupplierID).
			Find(&supplierFiles)
	}

	groups := view.GroupFiles(view.MergeOwnedFiles(tourFiles, supplierFiles))
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// UploadTourFile attaches a file to a tour
func UploadTourFile(c echo.Context) error {
	return uploadFile(c, filecat.OwnerTour)
}

// UploadSupplierFile attaches a file to a supplier
func UploadSupplierFile(c echo.Context) error {
	return uploadFile(c, filecat.OwnerSupplier)
}

func uploadFile(c echo.Context, kind filecat.OwnerKind) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid owner ID"})
	}

	user := session.FromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	if err := ownerExists(kind, uint(id)); err != nil {
		log.Warn("Upload owner not found",
			zap.String("owner_kind", string(kind)),
			zap.Uint64("owner_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลเจ้าของไฟล์"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ไม่พบไฟล์ที่อัปโหลด"})
	}

	category := c.FormValue("category")
	mimeType := fileHeader.Header.Get("Content-Type")

	if rejErr := filecat.Validate(mimeType, fileHeader.Size, category, kind, cfg.Upload.MaxBytes); rejErr != nil {
		rej := rejErr.(*filecat.Rejection)
		prometheus.RecordUploadRejection(rej.Reason)
		log.Warn("Upload rejected",
			zap.String("reason", rej.Reason),
			zap.String("mime_type", mimeType),
			zap.Int64("size", fileHeader.Size),
			zap.String("category", category))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": rej.Message})
	}

	class, _ := filecat.ClassForMIME(mimeType)

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการอัปโหลดไฟล์: " + err.Error(),
		})
	}
	defer src.Close()

	// Store under a uuid name; the original name is kept in the record.
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการอัปโหลดไฟล์: " + err.Error(),
		})
	}
	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	dst, err := os.Create(filepath.Join(cfg.Upload.Dir, storedName))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการอัปโหลดไฟล์: " + err.Error(),
		})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการอัปโหลดไฟล์: " + err.Error(),
		})
	}

	file := model.FileAttachment{
		OwnerKind:         string(kind),
		OwnerID:           uint(id),
		FileCategory:      filecat.GetCategoryInfo(kind, category).ID,
		FileType:          string(class),
		OriginalName:      fileHeader.Filename,
		FilePath:          "uploads/" + storedName,
		FileSizeFormatted: view.FormatFileSize(fileHeader.Size),
		UploadedBy:        user.Username,
		UploadedAt:        time.Now(),
	}

	// Labels only apply to supplier documents.
	if kind == filecat.OwnerSupplier {
		if label := c.FormValue("label"); label != "" {
			file.Label = &label
		}
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&file); result.Error != nil {
		log.Error("Failed to store file record", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการอัปโหลดไฟล์: " + result.Error.Error(),
		})
	}

	prometheus.RecordUpload(string(kind), file.FileCategory)
	log.Info("File uploaded",
		zap.Uint("file_id", file.ID),
		zap.String("owner_kind", file.OwnerKind),
		zap.Uint("owner_id", file.OwnerID),
		zap.String("category", file.FileCategory),
		zap.String("stored_name", storedName))

	return c.JSON(http.StatusCreated, fileResponse(file))
}

func ownerExists(kind filecat.OwnerKind, id uint) error {
	if kind == filecat.OwnerTour {
		var tour model.Tour
		return database.GetDB().Select("id").First(&tour, id).Error
	}
	var supplier model.Supplier
	return database.GetDB().Select("id").First(&supplier, id).Error
}

// DeleteFile removes a file record and its stored content
func DeleteFile(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid file ID"})
	}

	var file model.FileAttachment
	if result := database.GetDB().First(&file, id); result.Error != nil {
		log.Warn("File not found for delete", zap.Uint64("file_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบไฟล์"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := database.GetDB().Delete(&file); result.Error != nil {
		log.Error("Failed to delete file record", zap.Uint64("file_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการลบไฟล์: " + result.Error.Error(),
		})
	}

	// Stored content is removed best effort; the record is gone either way.
	stored := filepath.Join(cfg.Upload.Dir, filepath.Base(file.FilePath))
	if err := os.Remove(stored); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove stored file", zap.String("path", stored), zap.Error(err))
	}

	log.Info("File deleted", zap.Uint64("file_id", id), zap.String("file_path", file.FilePath))
	return c.JSON(http.StatusOK, echo.Map{"message": "ลบไฟล์เรียบร้อยแล้ว"})
}

// GetCategories returns the category registry for an owner kind, for
// upload forms.
func GetCategories(c echo.Context) error {
	kind := filecat.OwnerKind(c.Param("kind"))
	if kind != filecat.OwnerTour && kind != filecat.OwnerSupplier {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown owner kind"})
	}

	categories := filecat.Categories(kind)
	hints := make(map[string]filecat.CategoryHints, len(categories))
	for _, ci := range categories {
		hints[ci.ID] = filecat.GetCategoryHints(kind, ci.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"categories": categories,
		"hints":      hints,
	})
}
