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

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CallbackRequest represents the post-login callback request body
type CallbackRequest struct {
	ProgramName string `json:"programName,omitempty"`
}

// Callback handles POST /api/v1/auth/callback. Called by the frontend
// after receiving the Auth0 token; onboards a new program on first login.
func (h *AuthHandler) Callback(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CallbackRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var email string
	if claims := middleware.GetCustomClaims(c); claims != nil {
		email = claims.Email
	}

	result, err := h.authService.Callback(subject, email, req.ProgramName)
	if err != nil {
		if errors.Is(err, service.ErrProgramNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "programName", Message: "Program name is required for first login"},
			})
		}
		log.Error().Err(err).Str("subject", subject).Msg("Failed to resolve program on callback")
		return NewInternalError(c, "Failed to resolve program")
	}

	status := http.StatusOK
	if result.IsNewProgram {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	subject := middleware.GetSubject(c)

	program, err := h.authService.CurrentProgram(subject)
	if err != nil {
		if errors.Is(err, domain.ErrProgramNotFound) {
			return NewNotFoundError(c, "Program not found")
		}
		log.Error().Err(err).Str("subject", subject).Msg("Failed to load program")
		return NewInternalError(c, "Failed to load program")
	}

	return c.JSON(http.StatusOK, program)
}
