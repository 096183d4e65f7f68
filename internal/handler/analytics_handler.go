package handler

import (
	"net/http"

	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AnalyticsHandler serves dashboard rollups
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetSummary handles GET /api/v1/analytics/summary
func (h *AnalyticsHandler) GetSummary(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	summary, err := h.analyticsService.GetSummary(c.Request().Context(), programID)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to compute analytics summary")
		return NewInternalError(c, "Failed to compute analytics summary")
	}

	return c.JSON(http.StatusOK, summary)
}
