package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements domain.PaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, program_id, parent_id, plan_id, amount, status, due_date, reminders_sent, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var amount pgtype.Numeric
	err := row.Scan(&p.ID, &p.ProgramID, &p.ParentID, &p.PlanID, &amount,
		&p.Status, &p.DueDate, &p.RemindersSent, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Amount = numericToDecimal(amount)
	return &p, nil
}

// Create creates a new parent-facing payment aggregate row
func (r *PaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	ctx := context.Background()
	amount, err := decimalToNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (program_id, parent_id, plan_id, amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		payment.ProgramID, payment.ParentID, payment.PlanID, amount, payment.Status, payment.DueDate)
	return scanPayment(row)
}

// GetByID retrieves a payment by ID within a program
func (r *PaymentRepository) GetByID(programID int32, id int32) (*domain.Payment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE program_id = $1 AND id = $2`, programID, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetAllByProgram retrieves all payment rows for a program.
// Callers are expected to run domain.DedupeByParent over the result.
func (r *PaymentRepository) GetAllByProgram(programID int32) ([]*domain.Payment, error) {
	return r.list(`
		SELECT `+paymentColumns+` FROM payments
		WHERE program_id = $1
		ORDER BY created_at DESC, id DESC`, programID)
}

// GetByParent retrieves all payment rows for a parent, newest first
func (r *PaymentRepository) GetByParent(programID int32, parentID int32) ([]*domain.Payment, error) {
	return r.list(`
		SELECT `+paymentColumns+` FROM payments
		WHERE program_id = $1 AND parent_id = $2
		ORDER BY created_at DESC, id DESC`, programID, parentID)
}

// ListPastDue retrieves unpaid payments past the cutoff across all programs
func (r *PaymentRepository) ListPastDue(cutoff time.Time) ([]*domain.Payment, error) {
	return r.list(`
		SELECT `+paymentColumns+` FROM payments
		WHERE status NOT IN ('paid', 'cancelled') AND due_date IS NOT NULL AND due_date < $1
		ORDER BY due_date`, cutoff)
}

// IncrementReminders bumps the reminder counter for a payment
func (r *PaymentRepository) IncrementReminders(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET reminders_sent = reminders_sent + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// Update rewrites the aggregate fields derived from the plan's
// installments
func (r *PaymentRepository) Update(payment *domain.Payment) (*domain.Payment, error) {
	ctx := context.Background()
	amount, err := decimalToNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE payments SET amount = $2, status = $3, due_date = $4
		WHERE id = $1
		RETURNING `+paymentColumns,
		payment.ID, amount, payment.Status, payment.DueDate)
	updated, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdateStatus updates the payment aggregate's status
func (r *PaymentRepository) UpdateStatus(id int32, status domain.PaymentStatus) (*domain.Payment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE payments SET status = $2 WHERE id = $1
		RETURNING `+paymentColumns, id, status)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) list(query string, args ...any) ([]*domain.Payment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
