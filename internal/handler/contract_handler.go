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

// maxContractUploadBytes caps contract document uploads.
const maxContractUploadBytes = 20 << 20

// ContractHandler handles the contract e-sign workflow
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Upload handles POST /api/v1/contracts (multipart form)
func (h *ContractHandler) Upload(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	parentID, err := parseFormID(c, "parentId")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", []ValidationError{
			{Field: "parentId", Message: "A positive parent ID is required"},
		})
	}
	title := c.FormValue("title")

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return NewValidationError(c, "Document file is required", []ValidationError{
			{Field: "document", Message: "Attach the contract under the 'document' field"},
		})
	}
	if fileHeader.Size > maxContractUploadBytes {
		return NewValidationError(c, "Document is too large", []ValidationError{
			{Field: "document", Message: "Document must be 20MB or less"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Could not read uploaded file", nil)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	contract, err := h.contractService.Upload(ctx, programID, service.UploadInput{
		ParentID:    parentID,
		Title:       title,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Data:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Parent not found")
		case errors.Is(err, domain.ErrContractTitleEmpty):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "title", Message: "Title is required"},
			})
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to upload contract")
		return NewInternalError(c, "Failed to upload contract")
	}

	return c.JSON(http.StatusCreated, contract)
}

// GetContract handles GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.GetContract(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("contract_id", id).Msg("Failed to get contract")
		return NewInternalError(c, "Failed to get contract")
	}

	return c.JSON(http.StatusOK, contract)
}

// GetParentContracts handles GET /api/v1/parents/:id/contracts
func (h *ContractHandler) GetParentContracts(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	contracts, err := h.contractService.GetParentContracts(programID, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return NewNotFoundError(c, "Parent not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to list contracts")
		return NewInternalError(c, "Failed to list contracts")
	}

	return c.JSON(http.StatusOK, contracts)
}

// GetDocumentURL handles GET /api/v1/contracts/:id/document
func (h *ContractHandler) GetDocumentURL(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	url, err := h.contractService.DocumentURL(c.Request().Context(), programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return NewNotFoundError(c, "Contract not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("contract_id", id).Msg("Failed to presign contract URL")
		return NewInternalError(c, "Failed to get document URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Send handles POST /api/v1/contracts/:id/send
func (h *ContractHandler) Send(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	contract, err := h.contractService.SendContract(ctx, programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			return NewNotFoundError(c, "Contract not found")
		case errors.Is(err, domain.ErrContractInvalidStatus):
			return NewConflictError(c, "Only draft contracts can be sent")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("contract_id", id).Msg("Failed to send contract")
		return NewUpstreamError(c, "Failed to deliver contract email")
	}

	return c.JSON(http.StatusOK, contract)
}

// MarkSigned handles POST /api/v1/contracts/:id/sign
func (h *ContractHandler) MarkSigned(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.MarkSigned(programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			return NewNotFoundError(c, "Contract not found")
		case errors.Is(err, domain.ErrContractInvalidStatus):
			return NewConflictError(c, "Only sent contracts can be signed")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("contract_id", id).Msg("Failed to mark contract signed")
		return NewInternalError(c, "Failed to mark contract signed")
	}

	return c.JSON(http.StatusOK, contract)
}

// Void handles POST /api/v1/contracts/:id/void
func (h *ContractHandler) Void(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.Void(programID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			return NewNotFoundError(c, "Contract not found")
		case errors.Is(err, domain.ErrContractInvalidStatus):
			return NewConflictError(c, "Signed contracts cannot be voided")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("contract_id", id).Msg("Failed to void contract")
		return NewInternalError(c, "Failed to void contract")
	}

	return c.JSON(http.StatusOK, contract)
}

// parseFormID parses a positive int32 form value
func parseFormID(c echo.Context, name string) (int32, error) {
	return parseID(c.FormValue(name))
}
