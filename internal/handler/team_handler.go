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

// maxLogoUploadBytes caps team logo uploads.
const maxLogoUploadBytes = 5 << 20

// TeamHandler handles team and roster HTTP requests
type TeamHandler struct {
	teamService  *service.TeamService
	mediaService *service.MediaService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *service.TeamService, mediaService *service.MediaService) *TeamHandler {
	return &TeamHandler{
		teamService:  teamService,
		mediaService: mediaService,
	}
}

// TeamRequest represents the create/update team request body
type TeamRequest struct {
	Name      string  `json:"name"`
	AgeGroup  *string `json:"ageGroup,omitempty"`
	CoachName *string `json:"coachName,omitempty"`
}

// CreateTeam handles POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req TeamRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	team, err := h.teamService.CreateTeam(programID, &domain.Team{
		Name:      req.Name,
		AgeGroup:  req.AgeGroup,
		CoachName: req.CoachName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTeamNameEmpty) || errors.Is(err, domain.ErrTeamNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		}
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to create team")
		return NewInternalError(c, "Failed to create team")
	}

	return c.JSON(http.StatusCreated, team)
}

// GetTeams handles GET /api/v1/teams
func (h *TeamHandler) GetTeams(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	teams, err := h.teamService.ListTeams(programID)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to list teams")
		return NewInternalError(c, "Failed to list teams")
	}

	return c.JSON(http.StatusOK, teams)
}

// GetTeam handles GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	team, err := h.teamService.GetTeam(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to get team")
		return NewInternalError(c, "Failed to get team")
	}

	return c.JSON(http.StatusOK, team)
}

// UpdateTeam handles PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	var req TeamRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	team, err := h.teamService.UpdateTeam(programID, &domain.Team{
		ID:        id,
		Name:      req.Name,
		AgeGroup:  req.AgeGroup,
		CoachName: req.CoachName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNameEmpty), errors.Is(err, domain.ErrTeamNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		case errors.Is(err, domain.ErrTeamNotFound):
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to update team")
		return NewInternalError(c, "Failed to update team")
	}

	return c.JSON(http.StatusOK, team)
}

// DeleteTeam handles DELETE /api/v1/teams/:id
func (h *TeamHandler) DeleteTeam(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	if err := h.teamService.DeleteTeam(programID, id); err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to delete team")
		return NewInternalError(c, "Failed to delete team")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetRoster handles GET /api/v1/teams/:id/roster
func (h *TeamHandler) GetRoster(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	roster, err := h.teamService.GetRoster(programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to get roster")
		return NewInternalError(c, "Failed to get roster")
	}

	return c.JSON(http.StatusOK, roster)
}

// AssignRequest represents the single-assignment request body
type AssignRequest struct {
	ParentID int32 `json:"parentId"`
	TeamID   int32 `json:"teamId"`
}

// Assign handles POST /api/v1/teams/assignments
func (h *TeamHandler) Assign(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.teamService.AssignParent(programID, req.ParentID, req.TeamID); err != nil {
		switch {
		case errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Parent not found")
		case errors.Is(err, domain.ErrTeamNotFound):
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", req.ParentID).Msg("Failed to assign parent")
		return NewInternalError(c, "Failed to assign parent")
	}

	return c.NoContent(http.StatusNoContent)
}

// Unassign handles DELETE /api/v1/teams/assignments/:parentId
func (h *TeamHandler) Unassign(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	parentID, err := parseIDParam(c, "parentId")
	if err != nil {
		return NewValidationError(c, "Invalid parent ID", nil)
	}

	if err := h.teamService.UnassignParent(programID, parentID); err != nil {
		switch {
		case errors.Is(err, domain.ErrParentNotFound):
			return NewNotFoundError(c, "Parent not found")
		case errors.Is(err, domain.ErrAssignmentMissing):
			return NewNotFoundError(c, "Parent has no team assignment")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("parent_id", parentID).Msg("Failed to unassign parent")
		return NewInternalError(c, "Failed to unassign parent")
	}

	return c.NoContent(http.StatusNoContent)
}

// BulkReassignRequest represents the bulk reassignment request body
type BulkReassignRequest struct {
	ParentIDs []int32 `json:"parentIds"`
	ToTeamID  int32   `json:"toTeamId"`
}

// BulkReassign handles POST /api/v1/teams/bulk-reassign
func (h *TeamHandler) BulkReassign(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req BulkReassignRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.ParentIDs) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "parentIds", Message: "At least one parent is required"},
		})
	}

	result, err := h.teamService.BulkReassign(programID, req.ParentIDs, req.ToTeamID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Target team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to bulk reassign")
		return NewInternalError(c, "Failed to bulk reassign")
	}

	return c.JSON(http.StatusOK, result)
}

// UndoRequest carries the undo command returned by a bulk reassignment
type UndoRequest struct {
	Undo *service.UndoCommand `json:"undo"`
}

// UndoBulkReassign handles POST /api/v1/teams/bulk-reassign/undo
func (h *TeamHandler) UndoBulkReassign(c echo.Context) error {
	programID := middleware.GetProgramID(c)

	var req UndoRequest
	if err := c.Bind(&req); err != nil || req.Undo == nil {
		return NewValidationError(c, "Invalid undo command", nil)
	}

	result, err := h.teamService.Undo(programID, req.Undo)
	if err != nil {
		log.Error().Err(err).Int32("program_id", programID).Msg("Failed to undo bulk reassign")
		return NewInternalError(c, "Failed to undo bulk reassign")
	}

	return c.JSON(http.StatusOK, result)
}

// UploadLogo handles POST /api/v1/teams/:id/logo
func (h *TeamHandler) UploadLogo(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return NewValidationError(c, "Logo file is required", []ValidationError{
			{Field: "logo", Message: "Attach an image file under the 'logo' field"},
		})
	}
	if fileHeader.Size > maxLogoUploadBytes {
		return NewValidationError(c, "Logo file is too large", []ValidationError{
			{Field: "logo", Message: "Logo must be 5MB or less"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Could not read uploaded file", nil)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	team, err := h.mediaService.UploadTeamLogo(ctx, programID, id, file)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to upload team logo")
		return NewInternalError(c, "Failed to upload team logo")
	}

	return c.JSON(http.StatusOK, team)
}

// GetLogoURL handles GET /api/v1/teams/:id/logo
func (h *TeamHandler) GetLogoURL(c echo.Context) error {
	programID := middleware.GetProgramID(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid team ID", nil)
	}

	url, err := h.mediaService.LogoURL(c.Request().Context(), programID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return NewNotFoundError(c, "Team not found")
		}
		log.Error().Err(err).Int32("program_id", programID).Int32("team_id", id).Msg("Failed to presign logo URL")
		return NewInternalError(c, "Failed to get logo URL")
	}
	if url == "" {
		return NewNotFoundError(c, "Team has no logo")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
