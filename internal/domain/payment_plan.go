package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPlanNotFound            = errors.New("payment plan not found")
	ErrPlanParentRequired      = errors.New("payment plan parent is required")
	ErrPlanAmountInvalid       = errors.New("payment plan total amount must be positive")
	ErrPlanInstallmentsInvalid = errors.New("number of installments must be at least 1")
	ErrPlanTypeInvalid         = errors.New("payment plan type must be monthly, weekly or one_time")
	ErrPlanAmountMismatch      = errors.New("installment amount times count must approximate total amount")
	ErrPlanNotActive           = errors.New("payment plan is not active")
)

// PlanType is the installment cadence.
type PlanType string

const (
	PlanTypeMonthly PlanType = "monthly"
	PlanTypeWeekly  PlanType = "weekly"
	PlanTypeOneTime PlanType = "one_time"
)

// PlanStatus is the lifecycle state of a payment plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// amountTolerance is the rounding slack allowed between
// installmentAmount * installmentCount and totalAmount.
var amountTolerance = decimal.NewFromInt(1)

// PaymentPlan is a parent's commitment to pay totalAmount over
// installmentCount installments on the plan's cadence.
type PaymentPlan struct {
	ID                int32           `json:"id"`
	ProgramID         int32           `json:"programId"`
	ParentID          int32           `json:"parentId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	InstallmentCount  int32           `json:"installmentCount"`
	Type              PlanType        `json:"type"`
	StartDate         time.Time       `json:"startDate"`
	Status            PlanStatus      `json:"status"`
	PaymentMethod     *string         `json:"paymentMethod,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (p *PaymentPlan) Validate() error {
	if p.ParentID <= 0 {
		return ErrPlanParentRequired
	}
	if p.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrPlanAmountInvalid
	}
	if p.InstallmentCount < 1 {
		return ErrPlanInstallmentsInvalid
	}
	switch p.Type {
	case PlanTypeMonthly, PlanTypeWeekly, PlanTypeOneTime:
	default:
		return ErrPlanTypeInvalid
	}
	scheduled := p.InstallmentAmount.Mul(decimal.NewFromInt32(p.InstallmentCount))
	if scheduled.Sub(p.TotalAmount).Abs().GreaterThan(amountTolerance) {
		return ErrPlanAmountMismatch
	}
	return nil
}

// AuthoritativePlan picks the plan treated as authoritative when a parent
// has duplicates: the one with the largest totalAmount, ties broken by the
// most recently created (then greatest id, so ordering is total).
func AuthoritativePlan(plans []*PaymentPlan) *PaymentPlan {
	var best *PaymentPlan
	for _, p := range plans {
		if best == nil {
			best = p
			continue
		}
		switch {
		case p.TotalAmount.GreaterThan(best.TotalAmount):
			best = p
		case p.TotalAmount.Equal(best.TotalAmount):
			if p.CreatedAt.After(best.CreatedAt) ||
				(p.CreatedAt.Equal(best.CreatedAt) && p.ID > best.ID) {
				best = p
			}
		}
	}
	return best
}

type PaymentPlanRepository interface {
	Create(plan *PaymentPlan) (*PaymentPlan, error)
	GetByID(programID int32, id int32) (*PaymentPlan, error)
	// GetAnyByID retrieves a plan without asserting program ownership.
	// Only for webhook correlation, where tenancy is derived from the row.
	GetAnyByID(id int32) (*PaymentPlan, error)
	GetByParent(programID int32, parentID int32) ([]*PaymentPlan, error)
	GetAllByProgram(programID int32) ([]*PaymentPlan, error)
	UpdateStatus(id int32, status PlanStatus) (*PaymentPlan, error)
}
