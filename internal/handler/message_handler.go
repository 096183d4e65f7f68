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

// MessageHandler handles communication drafting and sending
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// DraftRequest represents the draft request body
type DraftRequest struct {
	ParentID    int32  `json:"parentId"`
	Kind        string `json:"kind"`
	Channel     string `json:"channel"`
	Instruction string `json:"instruction,omitempty"`
}

// Draft handles POST /api/v1/messages/draft
func (h *MessageHandler) Draft(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	draft, err := h.messageService.DraftMessage(c.Request().Context(), programID, service.DraftInput{
		ParentID:    req.ParentID,
		Kind:        domain.MessageKind(req.Kind),
		Channel:     domain.MessageChannel(req.Channel),
		Instruction: req.Instruction,
	})
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", req.ParentID).Msg("Failed to draft message")
		return NewInternalError(c, "Failed to draft message")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject":   draft.Subject,
		"body":      draft.Body,
		"aiDrafted": draft.AIDrafted,
	})
}

// SendRequest represents the send request body
type SendRequest struct {
	ParentID  int32  `json:"parentId"`
	Channel   string `json:"channel"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	AIDrafted bool   `json:"aiDrafted"`
}

// Send handles POST /api/v1/messages/send
func (h *MessageHandler) Send(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	logged, err := h.messageService.SendMessage(programID, service.SendInput{
		ParentID:  req.ParentID,
		Channel:   domain.MessageChannel(req.Channel),
		Subject:   req.Subject,
		Body:      req.Body,
		AIDrafted: req.AIDrafted,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Parent not found")
		case errors.Is(err, domain.ErrMessageBodyEmpty):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "body", Message: "Message body is required"},
			})
		case errors.Is(err, domain.ErrMessageChannelInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "channel", Message: "Channel must be email or sms"},
			})
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", req.ParentID).Msg("Failed to send message")
		return NewInternalError(c, "Failed to send message")
	}

	return c.JSON(http.StatusCreated, logged)
}

// GetHistory handles GET /api/v1/parents/:id/messages
func (h *MessageHandler) GetHistory(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	messages, err := h.messageService.GetHistory(programID, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to get message history")
		return NewInternalError(c, "Failed to get message history")
	}

	return c.JSON(http.StatusOK, messages)
}
