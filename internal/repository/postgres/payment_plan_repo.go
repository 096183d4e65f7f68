package postgres

import (
	"context"
	"errors"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentPlanRepository implements domain.PaymentPlanRepository using PostgreSQL
type PaymentPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentPlanRepository creates a new PaymentPlanRepository
func NewPaymentPlanRepository(pool *pgxpool.Pool) *PaymentPlanRepository {
	return &PaymentPlanRepository{pool: pool}
}

const planColumns = `id, program_id, parent_id, total_amount, installment_amount, installment_count, plan_type, start_date, status, payment_method, created_at, updated_at`

func scanPlan(row pgx.Row) (*domain.PaymentPlan, error) {
	var p domain.PaymentPlan
	var total, installment pgtype.Numeric
	err := row.Scan(&p.ID, &p.ProgramID, &p.ParentID, &total, &installment,
		&p.InstallmentCount, &p.Type, &p.StartDate, &p.Status, &p.PaymentMethod,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.TotalAmount = numericToDecimal(total)
	p.InstallmentAmount = numericToDecimal(installment)
	return &p, nil
}

// Create creates a new payment plan
func (r *PaymentPlanRepository) Create(plan *domain.PaymentPlan) (*domain.PaymentPlan, error) {
	ctx := context.Background()
	total, err := decimalToNumeric(plan.TotalAmount)
	if err != nil {
		return nil, err
	}
	installment, err := decimalToNumeric(plan.InstallmentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO payment_plans (program_id, parent_id, total_amount, installment_amount, installment_count, plan_type, start_date, status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+planColumns,
		plan.ProgramID, plan.ParentID, total, installment, plan.InstallmentCount,
		plan.Type, plan.StartDate, plan.Status, plan.PaymentMethod)
	return scanPlan(row)
}

// GetByID retrieves a payment plan by ID within a program
func (r *PaymentPlanRepository) GetByID(programID int32, id int32) (*domain.PaymentPlan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+` FROM payment_plans
		WHERE program_id = $1 AND id = $2`,
		programID, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetAnyByID retrieves a plan by ID without a program scope. Used for
// webhook correlation only.
func (r *PaymentPlanRepository) GetAnyByID(id int32) (*domain.PaymentPlan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+` FROM payment_plans WHERE id = $1`, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetByParent retrieves all plans for a parent, newest first
func (r *PaymentPlanRepository) GetByParent(programID int32, parentID int32) ([]*domain.PaymentPlan, error) {
	return r.list(`
		SELECT `+planColumns+` FROM payment_plans
		WHERE program_id = $1 AND parent_id = $2
		ORDER BY created_at DESC, id DESC`,
		programID, parentID)
}

// GetAllByProgram retrieves all plans for a program
func (r *PaymentPlanRepository) GetAllByProgram(programID int32) ([]*domain.PaymentPlan, error) {
	return r.list(`
		SELECT `+planColumns+` FROM payment_plans
		WHERE program_id = $1
		ORDER BY created_at DESC, id DESC`,
		programID)
}

// UpdateStatus transitions a plan's lifecycle status
func (r *PaymentPlanRepository) UpdateStatus(id int32, status domain.PlanStatus) (*domain.PaymentPlan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE payment_plans SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+planColumns,
		id, status)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (r *PaymentPlanRepository) list(query string, args ...any) ([]*domain.PaymentPlan, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.PaymentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
