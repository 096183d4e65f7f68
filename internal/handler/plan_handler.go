package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PlanHandler handles payment plan HTTP requests
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// CreatePlanRequest represents the create plan request body
type CreatePlanRequest struct {
	ParentID          int32   `json:"parentId"`
	TotalAmount       string  `json:"totalAmount"`
	InstallmentAmount string  `json:"installmentAmount,omitempty"`
	InstallmentCount  int32   `json:"installmentCount,omitempty"`
	Type              string  `json:"type"`
	StartDate         string  `json:"startDate"`
	PaymentMethod     *string `json:"paymentMethod,omitempty"`
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid total amount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	installmentAmount := decimal.Zero
	if req.InstallmentAmount != "" {
		installmentAmount, err = decimal.NewFromString(req.InstallmentAmount)
		if err != nil {
			return NewValidationError(c, "Invalid installment amount", []ValidationError{
				{Field: "installmentAmount", Message: "Must be a valid decimal number"},
			})
		}
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	input := service.CreatePlanInput{
		ParentID:          req.ParentID,
		TotalAmount:       totalAmount,
		InstallmentAmount: installmentAmount,
		InstallmentCount:  req.InstallmentCount,
		Type:              domain.PlanType(req.Type),
		StartDate:         startDate,
		PaymentMethod:     req.PaymentMethod,
	}

	detail, err := h.planService.CreatePlan(programID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Parent not found")
		case errors.Is(err, domain.ErrPlanTypeInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: monthly, weekly, one_time"},
			})
		case errors.Is(err, domain.ErrPlanAmountInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "totalAmount", Message: "Total amount must be positive"},
			})
		case errors.Is(err, domain.ErrPlanInstallmentsInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "installmentCount", Message: "Number of installments must be at least 1"},
			})
		case errors.Is(err, domain.ErrPlanAmountMismatch):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "installmentAmount", Message: "Installment amount times count must approximate the total amount"},
			})
		}
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to create payment plan")
		return NewInternalError(c, "Failed to create payment plan")
	}

	return c.JSON(http.StatusCreated, detail)
}

// GetPlans handles GET /api/v1/plans
func (h *PlanHandler) GetPlans(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	details, err := h.planService.ListPlans(programID)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to list payment plans")
		return NewInternalError(c, "Failed to list payment plans")
	}

	return c.JSON(http.StatusOK, details)
}

// GetPlan handles GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	detail, err := h.planService.GetPlan(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Payment plan not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("plan_id", id).Msg("Failed to get payment plan")
		return NewInternalError(c, "Failed to get payment plan")
	}

	return c.JSON(http.StatusOK, detail)
}

// GetParentPlans handles GET /api/v1/parents/:id/plans
func (h *PlanHandler) GetParentPlans(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	details, err := h.planService.GetParentPlans(programID, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to list parent plans")
		return NewInternalError(c, "Failed to list parent plans")
	}

	return c.JSON(http.StatusOK, details)
}

// CancelPlan handles POST /api/v1/plans/:id/cancel
func (h *PlanHandler) CancelPlan(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	plan, err := h.planService.CancelPlan(programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			return NewNotFoundError(c, "Payment plan not found")
		case errors.Is(err, domain.ErrPlanNotActive):
			return NewConflictError(c, "Plan is already completed or cancelled")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("plan_id", id).Msg("Failed to cancel payment plan")
		return NewInternalError(c, "Failed to cancel payment plan")
	}

	return c.JSON(http.StatusOK, plan)
}
