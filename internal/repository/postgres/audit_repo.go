package postgres

import (
	"context"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository implements domain.AuditRepository using PostgreSQL
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create appends an audit trail entry
func (r *AuditRepository) Create(entry *domain.AuditEntry) error {
	ctx := context.Background()
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_entries (program_id, entity, entity_id, action, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		entry.ProgramID, entry.Entity, entry.EntityID, entry.Action, entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// GetByEntity retrieves the audit trail for one entity, oldest first
func (r *AuditRepository) GetByEntity(programID int32, entity string, entityID int32) ([]*domain.AuditEntry, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, program_id, entity, entity_id, action, detail, created_at
		FROM audit_entries
		WHERE program_id = $1 AND entity = $2 AND entity_id = $3
		ORDER BY created_at, id`, programID, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		err := rows.Scan(&e.ID, &e.ProgramID, &e.Entity, &e.EntityID, &e.Action, &e.Detail, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
