package postgres

import (
	"context"
	"errors"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgramRepository implements domain.ProgramRepository using PostgreSQL
type ProgramRepository struct {
	pool *pgxpool.Pool
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{pool: pool}
}

const programColumns = `id, name, created_at, updated_at`

func scanProgram(row pgx.Row) (*domain.Program, error) {
	var p domain.Program
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a program by ID
func (r *ProgramRepository) GetByID(id int32) (*domain.Program, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
	program, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// GetByAdminSubject resolves the program an authenticated admin belongs to
func (r *ProgramRepository) GetByAdminSubject(subject string) (*domain.Program, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, p.name, p.created_at, p.updated_at
		FROM programs p
		JOIN admins a ON a.program_id = p.id
		WHERE a.auth_subject = $1`, subject)
	program, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// CreateWithAdmin creates a program and its first admin in one transaction
func (r *ProgramRepository) CreateWithAdmin(name string, subject string, email string) (*domain.Program, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO programs (name) VALUES ($1)
		RETURNING `+programColumns, name)
	program, err := scanProgram(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO admins (program_id, auth_subject, email)
		VALUES ($1, $2, $3)`, program.ID, subject, email)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return program, nil
}
