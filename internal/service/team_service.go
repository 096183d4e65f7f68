package service

import (
	"errors"
	"fmt"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// TeamService handles team rosters and bulk reassignment with undo
type TeamService struct {
	teamRepo       domain.TeamRepository
	parentRepo     domain.ParentRepository
	auditRepo      domain.AuditRepository
	eventPublisher websocket.EventPublisher
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo domain.TeamRepository, parentRepo domain.ParentRepository, auditRepo domain.AuditRepository) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		parentRepo: parentRepo,
		auditRepo:  auditRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TeamService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TeamService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// CreateTeam validates and creates a new team
func (s *TeamService) CreateTeam(programID int32, team *domain.Team) (*domain.Team, error) {
	team.ProgramID = programID
	if err := team.Validate(); err != nil {
		return nil, err
	}
	return s.teamRepo.Create(team)
}

// GetTeam retrieves a team by ID
func (s *TeamService) GetTeam(programID int32, id int32) (*domain.Team, error) {
	return s.teamRepo.GetByID(programID, id)
}

// ListTeams retrieves all teams for a program
func (s *TeamService) ListTeams(programID int32) ([]*domain.Team, error) {
	return s.teamRepo.GetAllByProgram(programID)
}

// UpdateTeam validates and updates a team
func (s *TeamService) UpdateTeam(programID int32, team *domain.Team) (*domain.Team, error) {
	team.ProgramID = programID
	if err := team.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.teamRepo.GetByID(programID, team.ID); err != nil {
		return nil, err
	}
	return s.teamRepo.Update(team)
}

// DeleteTeam unassigns the team's roster one record at a time, then
// deletes the team. A parent that fails to unassign blocks the delete.
func (s *TeamService) DeleteTeam(programID int32, id int32) error {
	if _, err := s.teamRepo.GetByID(programID, id); err != nil {
		return err
	}

	assignments, err := s.teamRepo.GetAssignmentsByTeam(programID, id)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := s.teamRepo.Unassign(programID, a.ParentID); err != nil {
			return fmt.Errorf("unassign parent %d: %w", a.ParentID, err)
		}
	}

	return s.teamRepo.Delete(programID, id)
}

// AssignParent places a parent's player on a team, replacing any
// existing assignment
func (s *TeamService) AssignParent(programID int32, parentID int32, teamID int32) error {
	if _, err := s.parentRepo.GetByID(programID, parentID); err != nil {
		return err
	}
	if _, err := s.teamRepo.GetByID(programID, teamID); err != nil {
		return err
	}
	return s.teamRepo.Assign(programID, parentID, teamID)
}

// UnassignParent removes a parent's team assignment
func (s *TeamService) UnassignParent(programID int32, parentID int32) error {
	if _, err := s.parentRepo.GetByID(programID, parentID); err != nil {
		return err
	}
	return s.teamRepo.Unassign(programID, parentID)
}

// ReassignItem is the per-parent outcome of a bulk operation
type ReassignItem struct {
	ParentID int32  `json:"parentId"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// priorAssignment captures where a parent was before a bulk move.
// TeamID nil means the parent had no assignment.
type priorAssignment struct {
	ParentID int32  `json:"parentId"`
	TeamID   *int32 `json:"teamId"`
}

// UndoCommand is the inverse of a bulk reassignment: each parent's prior
// team, re-applied record by record. It compensates rather than rolls
// back, so parents moved after the bulk operation are moved again.
type UndoCommand struct {
	ToTeamID int32             `json:"toTeamId"`
	Prior    []priorAssignment `json:"prior"`
}

// BulkReassignResult reports per-item outcomes plus the undo command
type BulkReassignResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Items     []ReassignItem `json:"items"`
	Undo      *UndoCommand   `json:"undo,omitempty"`
}

// BulkReassign moves parents to a team one row at a time. There is no
// transaction across records: each parent succeeds or fails on its own
// and the result reports both counts.
func (s *TeamService) BulkReassign(programID int32, parentIDs []int32, toTeamID int32) (*BulkReassignResult, error) {
	if _, err := s.teamRepo.GetByID(programID, toTeamID); err != nil {
		return nil, err
	}

	result := &BulkReassignResult{
		Items: make([]ReassignItem, 0, len(parentIDs)),
		Undo:  &UndoCommand{ToTeamID: toTeamID},
	}

	for _, parentID := range parentIDs {
		prior := priorAssignment{ParentID: parentID}
		if a, err := s.teamRepo.GetAssignment(programID, parentID); err == nil {
			teamID := a.TeamID
			prior.TeamID = &teamID
		} else if !errors.Is(err, domain.ErrAssignmentMissing) {
			result.Failed++
			result.Items = append(result.Items, ReassignItem{ParentID: parentID, Error: err.Error()})
			continue
		}

		if err := s.teamRepo.Assign(programID, parentID, toTeamID); err != nil {
			result.Failed++
			result.Items = append(result.Items, ReassignItem{ParentID: parentID, Error: err.Error()})
			log.Error().Err(err).
				Int32("program_id", programID).
				Int32("parent_id", parentID).
				Msg("Bulk reassign item failed")
			continue
		}

		result.Succeeded++
		result.Items = append(result.Items, ReassignItem{ParentID: parentID, OK: true})
		result.Undo.Prior = append(result.Undo.Prior, prior)
	}

	detail := fmt.Sprintf("%d moved, %d failed", result.Succeeded, result.Failed)
	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: programID,
		Entity:    "team",
		EntityID:  toTeamID,
		Action:    domain.AuditBulkReassigned,
		Detail:    &detail,
	})

	s.publishEvent(programID, websocket.TeamBulkReassigned(result))
	return result, nil
}

// Undo re-applies each parent's prior assignment from a bulk
// reassignment. Parents with no prior team are unassigned.
func (s *TeamService) Undo(programID int32, cmd *UndoCommand) (*BulkReassignResult, error) {
	result := &BulkReassignResult{
		Items: make([]ReassignItem, 0, len(cmd.Prior)),
	}

	for _, prior := range cmd.Prior {
		var err error
		if prior.TeamID == nil {
			err = s.teamRepo.Unassign(programID, prior.ParentID)
		} else {
			err = s.teamRepo.Assign(programID, prior.ParentID, *prior.TeamID)
		}
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, ReassignItem{ParentID: prior.ParentID, Error: err.Error()})
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, ReassignItem{ParentID: prior.ParentID, OK: true})
	}

	detail := fmt.Sprintf("%d restored, %d failed", result.Succeeded, result.Failed)
	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: programID,
		Entity:    "team",
		EntityID:  cmd.ToTeamID,
		Action:    domain.AuditBulkUndone,
		Detail:    &detail,
	})

	s.publishEvent(programID, websocket.TeamBulkUndone(result))
	return result, nil
}

// GetRoster retrieves the assignments for a team
func (s *TeamService) GetRoster(programID int32, teamID int32) ([]*domain.TeamAssignment, error) {
	if _, err := s.teamRepo.GetByID(programID, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.GetAssignmentsByTeam(programID, teamID)
}
