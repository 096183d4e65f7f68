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

// InstallmentRepository implements domain.InstallmentRepository using PostgreSQL
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, plan_id, number, amount, due_date, status, paid_at, payment_method, manually_marked, gateway_charge_id, created_at, updated_at`

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var i domain.Installment
	var amount pgtype.Numeric
	err := row.Scan(&i.ID, &i.PlanID, &i.Number, &amount, &i.DueDate, &i.Status,
		&i.PaidAt, &i.PaymentMethod, &i.ManuallyMarked, &i.GatewayChargeID,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Amount = numericToDecimal(amount)
	return &i, nil
}

// CreateBatch inserts all installments for a plan in a single transaction
func (r *InstallmentRepository) CreateBatch(installments []*domain.Installment) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, inst := range installments {
		amount, err := decimalToNumeric(inst.Amount)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO installments (plan_id, number, amount, due_date, status, paid_at, payment_method, manually_marked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`,
			inst.PlanID, inst.Number, amount, inst.DueDate, inst.Status,
			inst.PaidAt, inst.PaymentMethod, inst.ManuallyMarked,
		).Scan(&inst.ID, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an installment by ID
func (r *InstallmentRepository) GetByID(id int32) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+installmentColumns+` FROM installments WHERE id = $1`, id)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// GetByPlanID retrieves all installments for a plan in schedule order
func (r *InstallmentRepository) GetByPlanID(planID int32) ([]*domain.Installment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE plan_id = $1
		ORDER BY number`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// GetByGatewayChargeID looks up the installment a gateway charge correlates to
func (r *InstallmentRepository) GetByGatewayChargeID(chargeID string) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+installmentColumns+` FROM installments WHERE gateway_charge_id = $1`, chargeID)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// SetPaid marks an installment paid with its payment attribution
func (r *InstallmentRepository) SetPaid(id int32, paidAt time.Time, method *string, manual bool, chargeID *string) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE installments
		SET status = 'paid', paid_at = $2, payment_method = COALESCE($3, payment_method),
		    manually_marked = $4, gateway_charge_id = COALESCE($5, gateway_charge_id), updated_at = now()
		WHERE id = $1
		RETURNING `+installmentColumns,
		id, paidAt, method, manual, chargeID)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// SetPending reverts an installment to pending, clearing payment attribution
func (r *InstallmentRepository) SetPending(id int32) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE installments
		SET status = 'pending', paid_at = NULL, payment_method = NULL,
		    manually_marked = FALSE, gateway_charge_id = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+installmentColumns, id)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// SetGatewayChargeID stores the charge correlation id for a checkout session
func (r *InstallmentRepository) SetGatewayChargeID(id int32, chargeID string) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE installments SET gateway_charge_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+installmentColumns, id, chargeID)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// MarkOverdueBefore persists the overdue literal on pending installments past due
func (r *InstallmentRepository) MarkOverdueBefore(cutoff time.Time) (int64, error) {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE installments SET status = 'overdue', updated_at = now()
		WHERE status = 'pending' AND due_date < $1
		AND plan_id IN (SELECT id FROM payment_plans WHERE status = 'active')`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
