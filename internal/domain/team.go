package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameEmpty     = errors.New("team name is required")
	ErrTeamNameTooLong   = errors.New("team name must be 200 characters or less")
	ErrAssignmentMissing = errors.New("parent has no team assignment")
)

// Team is a roster unit within a program.
type Team struct {
	ID        int32     `json:"id"`
	ProgramID int32     `json:"programId"`
	Name      string    `json:"name"`
	AgeGroup  *string   `json:"ageGroup,omitempty"`
	CoachName *string   `json:"coachName,omitempty"`
	LogoKey   *string   `json:"logoKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTeamNameEmpty
	}
	if len(t.Name) > MaxNameLength {
		return ErrTeamNameTooLong
	}
	return nil
}

// TeamAssignment links a parent's player to a team. One assignment per
// parent; reassignment replaces the row.
type TeamAssignment struct {
	ParentID   int32     `json:"parentId"`
	TeamID     int32     `json:"teamId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// RosterCount is a per-team roster size used by analytics rollups.
type RosterCount struct {
	TeamID   int32  `json:"teamId"`
	TeamName string `json:"teamName"`
	Count    int32  `json:"count"`
}

type TeamRepository interface {
	Create(team *Team) (*Team, error)
	GetByID(programID int32, id int32) (*Team, error)
	GetAllByProgram(programID int32) ([]*Team, error)
	Update(team *Team) (*Team, error)
	UpdateLogoKey(programID int32, id int32, logoKey string) error
	Delete(programID int32, id int32) error

	Assign(programID int32, parentID int32, teamID int32) error
	Unassign(programID int32, parentID int32) error
	GetAssignment(programID int32, parentID int32) (*TeamAssignment, error)
	GetAssignmentsByTeam(programID int32, teamID int32) ([]*TeamAssignment, error)
	RosterCounts(programID int32) ([]*RosterCount, error)
}
