package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ParentHandler handles parent/guardian HTTP requests
type ParentHandler struct {
	parentService *service.ParentService
}

// NewParentHandler creates a new ParentHandler
func NewParentHandler(parentService *service.ParentService) *ParentHandler {
	return &ParentHandler{parentService: parentService}
}

// ParentRequest represents the create/update parent request body
type ParentRequest struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	PlayerName *string `json:"playerName,omitempty"`
}

func parentValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrParentNameEmpty):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "firstName", Message: "First and last name are required"},
		})
	case errors.Is(err, domain.ErrParentNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "firstName", Message: "Name must be 200 characters or less"},
		})
	case errors.Is(err, domain.ErrParentEmailInvalid):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "email", Message: "Email is invalid"},
		})
	}
	return nil
}

// CreateParent handles POST /api/v1/parents
func (h *ParentHandler) CreateParent(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req ParentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	parent := &domain.Parent{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		PlayerName: req.PlayerName,
	}

	created, err := h.parentService.CreateParent(programID, parent)
	if err != nil {
		if resp := parentValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to create parent")
		return NewInternalError(c, "Failed to create parent")
	}

	return c.JSON(http.StatusCreated, created)
}

// GetParents handles GET /api/v1/parents
func (h *ParentHandler) GetParents(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	parents, err := h.parentService.ListParents(programID)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to list parents")
		return NewInternalError(c, "Failed to list parents")
	}

	return c.JSON(http.StatusOK, parents)
}

// GetParent handles GET /api/v1/parents/:id
func (h *ParentHandler) GetParent(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	parent, err := h.parentService.GetParent(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", id).Msg("Failed to get parent")
		return NewInternalError(c, "Failed to get parent")
	}

	return c.JSON(http.StatusOK, parent)
}

// UpdateParent handles PUT /api/v1/parents/:id
func (h *ParentHandler) UpdateParent(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	var req ParentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	parent := &domain.Parent{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		PlayerName: req.PlayerName,
	}

	updated, err := h.parentService.UpdateParent(programID, parent)
	if err != nil {
		if resp := parentValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", id).Msg("Failed to update parent")
		return NewInternalError(c, "Failed to update parent")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteParent handles DELETE /api/v1/parents/:id
func (h *ParentHandler) DeleteParent(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	if err := h.parentService.DeleteParent(programID, id); err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", id).Msg("Failed to delete parent")
		return NewInternalError(c, "Failed to delete parent")
	}

	return c.NoContent(http.StatusNoContent)
}

// parseIDParam parses a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, error) {
	return parseID(c.Param(name))
}

func parseID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}
