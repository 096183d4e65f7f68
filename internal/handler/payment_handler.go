package handler

import (
	"errors"
	"net/http"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// PaymentHandler serves the deduplicated payment list and summaries
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// GetPayments handles GET /api/v1/payments
func (h *PaymentHandler) GetPayments(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	payments, err := h.paymentService.ListPayments(programID)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to list payments")
		return NewInternalError(c, "Failed to list payments")
	}

	return c.JSON(http.StatusOK, payments)
}

// GetParentSummary handles GET /api/v1/parents/:id/payments
func (h *PaymentHandler) GetParentSummary(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	summary, err := h.paymentService.GetParentSummary(programID, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to get payment summary")
		return NewInternalError(c, "Failed to get payment summary")
	}

	return c.JSON(http.StatusOK, summary)
}
