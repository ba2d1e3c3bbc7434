package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tourdesk/internal/suggest"
	"tourdesk/pkg/database"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"
)

// GetSuggestions serves autocomplete for tour form fields. This
// endpoint never fails from the caller's point of view: any problem
// degrades to an empty suggestion list.
func GetSuggestions(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SuggestionFetchesCounter.Inc()

	field := c.QueryParam("type")
	query := strings.TrimSpace(c.QueryParam("q"))

	empty := echo.Map{"suggestions": []suggest.Item{}}
	if field == "" || len(query) < 2 {
		return c.JSON(http.StatusOK, empty)
	}

	store := suggest.NewStore(database.GetDB())
	items, err := store.Suggestions(c.Request().Context(), field, query, 10)
	if err != nil {
		prometheus.SuggestionErrorsCounter.Inc()
		log.Warn("Suggestion fetch failed",
			zap.String("field", field),
			zap.String("query", query),
			zap.Error(err))
		return c.JSON(http.StatusOK, empty)
	}

	return c.JSON(http.StatusOK, echo.Map{"suggestions": items})
}
