package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tourdesk/internal/model"
	"tourdesk/internal/view"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Phone2   string `json:"phone_2"`
	Phone3   string `json:"phone_3"`
	Phone4   string `json:"phone_4"`
	Phone5   string `json:"phone_5"`
	Line     string `json:"line"`
	Facebook string `json:"facebook"`
	Whatsapp string `json:"whatsapp"`
	Website  string `json:"website"`
}

func (r *SupplierRequest) apply(s *model.Supplier) {
	s.Name = r.Name
	s.Address = r.Address
	s.Phone = r.Phone
	s.Phone2 = r.Phone2
	s.Phone3 = r.Phone3
	s.Phone4 = r.Phone4
	s.Phone5 = r.Phone5
	s.Line = r.Line
	s.Facebook = r.Facebook
	s.Whatsapp = r.Whatsapp
	s.Website = r.Website
}

// ListSuppliers retrieves suppliers with search, smart filters and sorting
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("list")

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var suppliers []model.Supplier
	if result := database.GetDB().Order("name asc").Find(&suppliers); result.Error != nil {
		log.Error("Failed to retrieve suppliers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการโหลดข้อมูลซัพพลายเออร์: " + result.Error.Error(),
		})
	}

	// Smart filters reason over each supplier's tours.
	var tours []model.Tour
	if result := database.GetDB().Find(&tours); result.Error != nil {
		log.Error("Failed to retrieve tours for supplier filters", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการโหลดข้อมูลซัพพลายเออร์: " + result.Error.Error(),
		})
	}

	var activeFilters []string
	if raw := c.QueryParam("filters"); raw != "" {
		activeFilters = strings.Split(raw, ",")
	}

	filtered := view.FilterSuppliers(
		suppliers,
		view.ToursBySupplier(tours),
		c.QueryParam("q"),
		activeFilters,
		parseSortState(c),
		time.Now(),
	)

	log.Info("Suppliers retrieved",
		zap.Int("total", len(suppliers)),
		zap.Int("matched", len(filtered)),
		zap.Strings("filters", activeFilters))

	return c.JSON(http.StatusOK, echo.Map{
		"suppliers": filtered,
		"total":     len(filtered),
	})
}

// GetSupplier retrieves a supplier by ID together with its tours
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid supplier ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supplier ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		log.Warn("Supplier not found", zap.Uint64("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลซัพพลายเออร์"})
	}

	var tours []model.Tour
	database.GetDB().Where("supplier_id = ?", id).Order("updated_at desc").Find(&tours)

	return c.JSON(http.StatusOK, echo.Map{
		"supplier": supplier,
		"tours":    tours,
	})
}

// CreateSupplier creates a new supplier
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("create")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var supplier model.Supplier
	req.apply(&supplier)

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&supplier); result.Error != nil {
		log.Error("Failed to create supplier", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการเพิ่มซัพพลายเออร์: " + result.Error.Error(),
		})
	}

	log.Info("Supplier created", zap.Uint("supplier_id", supplier.ID), zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier updates an existing supplier
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid supplier ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supplier ID"})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		log.Warn("Supplier not found for update", zap.Uint64("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลซัพพลายเออร์"})
	}

	req.apply(&supplier)

	// Track DB operations
	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&supplier); result.Error != nil {
		log.Error("Failed to update supplier", zap.Uint64("supplier_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการแก้ไขซัพพลายเออร์: " + result.Error.Error(),
		})
	}

	log.Info("Supplier updated", zap.Uint64("supplier_id", id), zap.String("name", supplier.Name))
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier. Suppliers that still have tours
// cannot be deleted.
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSupplierOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid supplier ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supplier ID"})
	}

	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, id); result.Error != nil {
		log.Warn("Supplier not found for delete", zap.Uint64("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลซัพพลายเออร์"})
	}

	var tourCount int64
	database.GetDB().Model(&model.Tour{}).Where("supplier_id = ?", id).Count(&tourCount)
	if tourCount > 0 {
		log.Warn("Supplier still has tours",
			zap.Uint64("supplier_id", id),
			zap.Int64("tour_count", tourCount))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "ไม่สามารถลบซัพพลายเออร์ที่ยังมีทัวร์อยู่ได้",
		})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := database.GetDB().Delete(&supplier); result.Error != nil {
		log.Error("Failed to delete supplier", zap.Uint64("supplier_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการลบซัพพลายเออร์: " + result.Error.Error(),
		})
	}

	log.Info("Supplier deleted", zap.Uint64("supplier_id", id), zap.String("name", supplier.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "ลบซัพพลายเออร์เรียบร้อยแล้ว"})
}
