package postgres

import (
	"context"
	"errors"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeamRepository implements domain.TeamRepository using PostgreSQL
type TeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

const teamColumns = `id, program_id, name, age_group, coach_name, logo_key, created_at, updated_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.ProgramID, &t.Name, &t.AgeGroup, &t.CoachName,
		&t.LogoKey, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create creates a new team
func (r *TeamRepository) Create(team *domain.Team) (*domain.Team, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (program_id, name, age_group, coach_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+teamColumns,
		team.ProgramID, team.Name, team.AgeGroup, team.CoachName)
	return scanTeam(row)
}

// GetByID retrieves a team by ID within a program
func (r *TeamRepository) GetByID(programID int32, id int32) (*domain.Team, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+teamColumns+` FROM teams
		WHERE program_id = $1 AND id = $2`, programID, id)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// GetAllByProgram retrieves all teams for a program
func (r *TeamRepository) GetAllByProgram(programID int32) ([]*domain.Team, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+teamColumns+` FROM teams
		WHERE program_id = $1 ORDER BY name`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Update updates a team's details
func (r *TeamRepository) Update(team *domain.Team) (*domain.Team, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE teams SET name = $3, age_group = $4, coach_name = $5, updated_at = now()
		WHERE program_id = $1 AND id = $2
		RETURNING `+teamColumns,
		team.ProgramID, team.ID, team.Name, team.AgeGroup, team.CoachName)
	updated, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdateLogoKey stores the object key of an uploaded team logo
func (r *TeamRepository) UpdateLogoKey(programID int32, id int32, logoKey string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE teams SET logo_key = $3, updated_at = now()
		WHERE program_id = $1 AND id = $2`, programID, id, logoKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// Delete removes a team
func (r *TeamRepository) Delete(programID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM teams WHERE program_id = $1 AND id = $2`, programID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// Assign assigns a parent's player to a team, replacing any prior assignment
func (r *TeamRepository) Assign(programID int32, parentID int32, teamID int32) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_assignments (program_id, parent_id, team_id, assigned_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (program_id, parent_id)
		DO UPDATE SET team_id = EXCLUDED.team_id, assigned_at = now()`,
		programID, parentID, teamID)
	return err
}

// Unassign removes a parent's team assignment
func (r *TeamRepository) Unassign(programID int32, parentID int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM team_assignments WHERE program_id = $1 AND parent_id = $2`,
		programID, parentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssignmentMissing
	}
	return nil
}

// GetAssignment retrieves a parent's current team assignment
func (r *TeamRepository) GetAssignment(programID int32, parentID int32) (*domain.TeamAssignment, error) {
	ctx := context.Background()
	var a domain.TeamAssignment
	err := r.pool.QueryRow(ctx, `
		SELECT parent_id, team_id, assigned_at FROM team_assignments
		WHERE program_id = $1 AND parent_id = $2`,
		programID, parentID).Scan(&a.ParentID, &a.TeamID, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssignmentMissing
		}
		return nil, err
	}
	return &a, nil
}

// GetAssignmentsByTeam retrieves all assignments for a team
func (r *TeamRepository) GetAssignmentsByTeam(programID int32, teamID int32) ([]*domain.TeamAssignment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT parent_id, team_id, assigned_at FROM team_assignments
		WHERE program_id = $1 AND team_id = $2 ORDER BY parent_id`,
		programID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*domain.TeamAssignment
	for rows.Next() {
		var a domain.TeamAssignment
		if err := rows.Scan(&a.ParentID, &a.TeamID, &a.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// RosterCounts aggregates roster sizes per team for analytics
func (r *TeamRepository) RosterCounts(programID int32) ([]*domain.RosterCount, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, COUNT(a.parent_id)
		FROM teams t
		LEFT JOIN team_assignments a ON a.team_id = t.id
		WHERE t.program_id = $1
		GROUP BY t.id, t.name
		ORDER BY t.name`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*domain.RosterCount
	for rows.Next() {
		var c domain.RosterCount
		if err := rows.Scan(&c.TeamID, &c.TeamName, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, &c)
	}
	return counts, rows.Err()
}
