package postgres

import (
	"context"
	"errors"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParentRepository implements domain.ParentRepository using PostgreSQL
type ParentRepository struct {
	pool *pgxpool.Pool
}

// NewParentRepository creates a new ParentRepository
func NewParentRepository(pool *pgxpool.Pool) *ParentRepository {
	return &ParentRepository{pool: pool}
}

const parentColumns = `id, program_id, first_name, last_name, email, phone, player_name, created_at, updated_at, deleted_at`

func scanParent(row pgx.Row) (*domain.Parent, error) {
	var p domain.Parent
	err := row.Scan(&p.ID, &p.ProgramID, &p.FirstName, &p.LastName, &p.Email,
		&p.Phone, &p.PlayerName, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new parent record
func (r *ParentRepository) Create(parent *domain.Parent) (*domain.Parent, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO parents (program_id, first_name, last_name, email, phone, player_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+parentColumns,
		parent.ProgramID, parent.FirstName, parent.LastName, parent.Email, parent.Phone, parent.PlayerName)
	return scanParent(row)
}

// GetByID retrieves a parent by ID within a program
func (r *ParentRepository) GetByID(programID int32, id int32) (*domain.Parent, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+parentColumns+` FROM parents
		WHERE program_id = $1 AND id = $2 AND deleted_at IS NULL`,
		programID, id)
	parent, err := scanParent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParentNotFound
		}
		return nil, err
	}
	return parent, nil
}

// GetAllByProgram retrieves all non-deleted parents for a program
func (r *ParentRepository) GetAllByProgram(programID int32) ([]*domain.Parent, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+parentColumns+` FROM parents
		WHERE program_id = $1 AND deleted_at IS NULL
		ORDER BY last_name, first_name`,
		programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parents []*domain.Parent
	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, err
		}
		parents = append(parents, p)
	}
	return parents, rows.Err()
}

// Update updates a parent's contact fields
func (r *ParentRepository) Update(parent *domain.Parent) (*domain.Parent, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE parents
		SET first_name = $3, last_name = $4, email = $5, phone = $6, player_name = $7, updated_at = now()
		WHERE program_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+parentColumns,
		parent.ProgramID, parent.ID, parent.FirstName, parent.LastName, parent.Email, parent.Phone, parent.PlayerName)
	updated, err := scanParent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a parent as deleted without removing the row
func (r *ParentRepository) SoftDelete(programID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE parents SET deleted_at = now()
		WHERE program_id = $1 AND id = $2 AND deleted_at IS NULL`,
		programID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParentNotFound
	}
	return nil
}
