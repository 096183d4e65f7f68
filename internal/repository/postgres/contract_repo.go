package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContractRepository implements domain.ContractRepository using PostgreSQL
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new ContractRepository
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

const contractColumns = `id, program_id, parent_id, title, object_key, status, sent_at, signed_at, created_at, updated_at`

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var c domain.Contract
	err := row.Scan(&c.ID, &c.ProgramID, &c.ParentID, &c.Title, &c.ObjectKey,
		&c.Status, &c.SentAt, &c.SignedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new contract record
func (r *ContractRepository) Create(contract *domain.Contract) (*domain.Contract, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contracts (program_id, parent_id, title, object_key, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contractColumns,
		contract.ProgramID, contract.ParentID, contract.Title, contract.ObjectKey, contract.Status)
	return scanContract(row)
}

// GetByID retrieves a contract by ID within a program
func (r *ContractRepository) GetByID(programID int32, id int32) (*domain.Contract, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE program_id = $1 AND id = $2`, programID, id)
	contract, err := scanContract(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}

// GetByParent retrieves all contracts for a parent, newest first
func (r *ContractRepository) GetByParent(programID int32, parentID int32) ([]*domain.Contract, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE program_id = $1 AND parent_id = $2
		ORDER BY created_at DESC, id DESC`, programID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// UpdateStatus transitions a contract's workflow status. Timestamps are
// only advanced, never cleared: nil arguments leave the stored value.
func (r *ContractRepository) UpdateStatus(id int32, status domain.ContractStatus, sentAt, signedAt *time.Time) (*domain.Contract, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE contracts
		SET status = $2, sent_at = COALESCE($3, sent_at), signed_at = COALESCE($4, signed_at), updated_at = now()
		WHERE id = $1
		RETURNING `+contractColumns,
		id, status, sentAt, signedAt)
	contract, err := scanContract(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}
