package postgres

import (
	"context"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository implements domain.MessageRepository using PostgreSQL
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, program_id, parent_id, channel, subject, body, status, ai_drafted, created_at`

func scanMessage(row pgx.Row) (*domain.MessageLog, error) {
	var m domain.MessageLog
	err := row.Scan(&m.ID, &m.ProgramID, &m.ParentID, &m.Channel, &m.Subject,
		&m.Body, &m.Status, &m.AIDrafted, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create records an outbound communication
func (r *MessageRepository) Create(msg *domain.MessageLog) (*domain.MessageLog, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO message_logs (program_id, parent_id, channel, subject, body, status, ai_drafted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+messageColumns,
		msg.ProgramID, msg.ParentID, msg.Channel, msg.Subject, msg.Body, msg.Status, msg.AIDrafted)
	return scanMessage(row)
}

// GetByParent retrieves a parent's communication history, newest first
func (r *MessageRepository) GetByParent(programID int32, parentID int32) ([]*domain.MessageLog, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM message_logs
		WHERE program_id = $1 AND parent_id = $2
		ORDER BY created_at DESC, id DESC`, programID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.MessageLog
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
