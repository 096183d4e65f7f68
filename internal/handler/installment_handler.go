package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// InstallmentHandler handles installment mark/revert and charging
type InstallmentHandler struct {
	installmentService *service.InstallmentService
	chargeService      *service.ChargeService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *service.InstallmentService, chargeService *service.ChargeService) *InstallmentHandler {
	return &InstallmentHandler{
		installmentService: installmentService,
		chargeService:      chargeService,
	}
}

// MarkPaidRequest represents the mark-paid request body
type MarkPaidRequest struct {
	PaidAt        string  `json:"paidAt,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// MarkPaid handles POST /api/v1/installments/:id/mark-paid
func (h *InstallmentHandler) MarkPaid(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	var req MarkPaidRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.MarkPaidInput{PaymentMethod: req.PaymentMethod}
	if req.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			return NewValidationError(c, "Invalid paidAt", []ValidationError{
				{Field: "paidAt", Message: "Must be an RFC 3339 timestamp"},
			})
		}
		input.PaidAt = &paidAt
	}

	result, err := h.installmentService.MarkPaid(programID, id, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInstallmentNotFound), errors.Is(err, domain.ErrPlanNotFound):
			return NewNotFoundError(c, "Installment not found")
		case errors.Is(err, domain.ErrInstallmentGatewayPaid):
			return NewConflictError(c, "Installment was paid through the payment gateway and cannot be modified manually")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("installment_id", id).Msg("Failed to mark installment paid")
		return NewInternalError(c, "Failed to mark installment paid")
	}

	return c.JSON(http.StatusOK, result)
}

// Revert handles POST /api/v1/installments/:id/revert
func (h *InstallmentHandler) Revert(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	result, err := h.installmentService.Revert(programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInstallmentNotFound), errors.Is(err, domain.ErrPlanNotFound):
			return NewNotFoundError(c, "Installment not found")
		case errors.Is(err, domain.ErrInstallmentGatewayPaid):
			return NewConflictError(c, "Installment was paid through the payment gateway and cannot be modified manually")
		case errors.Is(err, domain.ErrInstallmentNotManual):
			return NewConflictError(c, "Only manually marked installments can be reverted")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("installment_id", id).Msg("Failed to revert installment")
		return NewInternalError(c, "Failed to revert installment")
	}

	return c.JSON(http.StatusOK, result)
}

// GetAuditTrail handles GET /api/v1/installments/:id/audit
func (h *InstallmentHandler) GetAuditTrail(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	entries, err := h.installmentService.GetAuditTrail(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) || errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Installment not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("installment_id", id).Msg("Failed to get audit trail")
		return NewInternalError(c, "Failed to get audit trail")
	}

	return c.JSON(http.StatusOK, entries)
}

// Charge handles POST /api/v1/installments/:id/charge
func (h *InstallmentHandler) Charge(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	session, err := h.chargeService.InitiateCharge(ctx, programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInstallmentNotFound), errors.Is(err, domain.ErrPlanNotFound), errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Installment not found")
		case errors.Is(err, domain.ErrInstallmentGatewayPaid):
			return NewConflictError(c, "Installment is already paid")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("installment_id", id).Msg("Failed to create checkout session")
		return NewUpstreamError(c, "Payment provider is unavailable")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"sessionId":   session.ID,
		"checkoutUrl": session.URL,
	})
}
