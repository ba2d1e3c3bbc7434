package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tourdesk/internal/export"
	"tourdesk/internal/model"
	"tourdesk/internal/view"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"
)

// ExportTours streams the tour list as a spreadsheet. The same search
// and sort parameters as the list view apply, so what the user sees is
// what downloads.
func ExportTours(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTourOperation("export")

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tours []model.Tour
	if result := database.GetDB().Preload("Supplier").Order("updated_at desc").Find(&tours); result.Error != nil {
		log.Error("Failed to retrieve tours for export", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการส่งออกข้อมูล: " + result.Error.Error(),
		})
	}
	fillSupplierNames(tours)

	filtered := view.FilterTours(tours, c.QueryParam("q"), parseSortState(c))

	workbook, err := export.BuildTourWorkbook(filtered)
	if err != nil {
		log.Error("Failed to build workbook", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "เกิดข้อผิดพลาดในการส่งออกข้อมูล: " + err.Error(),
		})
	}

	filename := export.WorkbookFilename(time.Now())
	log.Info("Tour export generated",
		zap.Int("rows", len(filtered)),
		zap.String("filename", filename))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return workbook.Write(c.Response())
}
