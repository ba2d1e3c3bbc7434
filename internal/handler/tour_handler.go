package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tourdesk/internal/model"
	"tourdesk/internal/session"
	"tourdesk/internal/suggest"
	"tourdesk/internal/view"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"
)

// TourRequest defines the payload for one tour in create/update requests
type TourRequest struct {
	TourName        string  `json:"tour_name" validate:"required"`
	DepartureFrom   string  `json:"departure_from"`
	Pier            string  `json:"pier"`
	AdultPrice      float64 `json:"adult_price" validate:"gte=0"`
	ChildPrice      float64 `json:"child_price" validate:"gte=0"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Notes           string  `json:"notes"`
	ParkFeeIncluded bool    `json:"park_fee_included"`
	MapURL          string  `json:"map_url"`
}

// BatchTourRequest submits multiple tours under one supplier
type BatchTourRequest struct {
	SupplierID uint          `json:"supplier_id" validate:"required"`
	Tours      []TourRequest `json:"tours" validate:"required,min=1,dive"`
}

// toModel converts the request into a tour, normalizing legacy date
// strings at the boundary.
func (r *TourRequest) toModel(supplierID *uint, updatedBy string) model.Tour {
	return model.Tour{
		TourName:        r.TourName,
		SupplierID:      supplierID,
		DepartureFrom:   r.DepartureFrom,
		Pier:            r.Pier,
		AdultPrice:      r.AdultPrice,
		ChildPrice:      r.ChildPrice,
		StartDate:       model.ParseLegacyDate(r.StartDate),
		EndDate:         model.ParseLegacyDate(r.EndDate),
		Notes:           r.Notes,
		ParkFeeIncluded: r.ParkFeeIncluded,
		MapURL:          r.MapURL,
		UpdatedBy:       updatedBy,
	}
}

// validDateRange checks end > start when both are present.
func validDateRange(start, end *time.Time) bool {
	if start == nil || end == nil {
		return true
	}
	return end.After(*start)
}

func fillSupplierNames(tours []model.Tour) {
	for i := range tours {
		if tours[i].Supplier != nil {
			tours[i].SupplierName = tours[i].Supplier.Name
		}
	}
}

// parseSortState reads sort/dir query params into a SortState.
func parseSortState(c echo.Context) view.SortState {
	key := c.QueryParam("sort")
	if key == "" {
		return view.SortState{}
	}
	dir := view.Ascending
	if c.QueryParam("dir") == string(view.Descending) {
		dir = view.Descending
	}
	return view.SortState{Key: key, Direction: dir}
}

// ListTours retrieves tours, filtered and sorted per query parameters
func ListTours(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("list")

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tours []model.Tour
	result := database.GetDB().Preload("Supplier").Order("updated_at desc").Find(&tours)
	if result.Error != nil {
		log.Error("Failed to retrieve tours", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการโหลดข้อมูลทัวร์: " + result.Error.Error(),
		})
	}
	fillSupplierNames(tours)

	filtered := view.FilterTours(tours, c.QueryParam("q"), parseSortState(c))

	log.Info("Tours retrieved",
		zap.Int("total", len(tours)),
		zap.Int("matched", len(filtered)))

	return c.JSON(http.StatusOK, echo.Map{
		"tours": filtered,
		"total": len(filtered),
	})
}

// GetTour retrieves a tour by ID
func GetTour(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tour ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tour ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tour model.Tour
	result := database.GetDB().Preload("Supplier").First(&tour, id)
	if result.Error != nil {
		log.Warn("Tour not found", zap.Uint64("tour_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลทัวร์"})
	}
	if tour.Supplier != nil {
		tour.SupplierName = tour.Supplier.Name
	}

	return c.JSON(http.StatusOK, tour)
}

// CreateTours creates a batch of tours under one supplier. The batch
// is transactional: either every tour is stored or none.
func CreateTours(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("create")

	var req BatchTourRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := session.FromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// The supplier must exist before anything is inserted.
	var supplier model.Supplier
	if result := database.GetDB().First(&supplier, req.SupplierID); result.Error != nil {
		log.Warn("Supplier not found for tour batch", zap.Uint("supplier_id", req.SupplierID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลซัพพลายเออร์"})
	}

	tours := make([]model.Tour, 0, len(req.Tours))
	for _, tr := range req.Tours {
		t := tr.toModel(&req.SupplierID, user.Username)
		if !validDateRange(t.StartDate, t.EndDate) {
			log.Warn("Invalid date range in tour batch", zap.String("tour_name", t.TourName))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "วันที่สิ้นสุดต้องอยู่หลังวันที่เริ่มต้น",
			})
		}
		tours = append(tours, t)
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	db := database.GetDB()
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tours).Error
	}); err != nil {
		log.Error("Failed to create tours",
			zap.Uint("supplier_id", req.SupplierID),
			zap.Int("count", len(tours)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการเพิ่มทัวร์: " + err.Error(),
		})
	}

	recordTourSuggestions(c, tours)

	log.Info("Tours created",
		zap.Uint("supplier_id", req.SupplierID),
		zap.Int("count", len(tours)))
	return c.JSON(http.StatusCreated, echo.Map{"tours": tours})
}

// UpdateTour updates an existing tour
func UpdateTour(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tour ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tour ID"})
	}

	var req TourRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("tour_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := session.FromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var tour model.Tour
	if result := database.GetDB().First(&tour, id); result.Error != nil {
		log.Warn("Tour not found for update", zap.Uint64("tour_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลทัวร์"})
	}

	startDate := model.ParseLegacyDate(req.StartDate)
	endDate := model.ParseLegacyDate(req.EndDate)
	if !validDateRange(startDate, endDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "วันที่สิ้นสุดต้องอยู่หลังวันที่เริ่มต้น",
		})
	}

	tour.TourName = req.TourName
	tour.DepartureFrom = req.DepartureFrom
	tour.Pier = req.Pier
	tour.AdultPrice = req.AdultPrice
	tour.ChildPrice = req.ChildPrice
	tour.StartDate = startDate
	tour.EndDate = endDate
	tour.Notes = req.Notes
	tour.ParkFeeIncluded = req.ParkFeeIncluded
	tour.MapURL = req.MapURL
	tour.UpdatedBy = user.Username

	// Track DB operations
	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Save(&tour); result.Error != nil {
		log.Error("Failed to update tour", zap.Uint64("tour_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการแก้ไขทัวร์: " + result.Error.Error(),
		})
	}

	recordTourSuggestions(c, []model.Tour{tour})

	log.Info("Tour updated", zap.Uint64("tour_id", id), zap.String("tour_name", tour.TourName))
	return c.JSON(http.StatusOK, tour)
}

// DeleteTour removes a tour permanently
func DeleteTour(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tour ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tour ID"})
	}

	var tour model.Tour
	if result := database.GetDB().First(&tour, id); result.Error != nil {
		log.Warn("Tour not found for delete", zap.Uint64("tour_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ไม่พบข้อมูลทัวร์"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("delete")(time.Now())

	// Hard delete; the UI warns that this is irreversible.
	if result := database.GetDB().Unscoped().Delete(&tour); result.Error != nil {
		log.Error("Failed to delete tour", zap.Uint64("tour_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการลบทัวร์: " + result.Error.Error(),
		})
	}

	log.Info("Tour deleted", zap.Uint64("tour_id", id), zap.String("tour_name", tour.TourName))
	return c.JSON(http.StatusOK, echo.Map{"message": "ลบทัวร์เรียบร้อยแล้ว"})
}

// recordTourSuggestions feeds saved field values into the autocomplete
// store. Failures are logged and ignored; suggestions are best effort.
func recordTourSuggestions(c echo.Context, tours []model.Tour) {
	log := logger.FromContext(c)
	store := suggest.NewStore(database.GetDB())
	ctx := c.Request().Context()
	for _, t := range tours {
		if err := store.RecordUsage(ctx, suggest.FieldDepartureFrom, t.DepartureFrom); err != nil {
			log.Warn("Failed to record suggestion usage", zap.Error(err))
		}
		if err := store.RecordUsage(ctx, suggest.FieldPier, t.Pier); err != nil {
			log.Warn("Failed to record suggestion usage", zap.Error(err))
		}
	}
}
