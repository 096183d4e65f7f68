package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var ErrPaymentNotFound = errors.New("payment not found")

// DefaultPaymentMethod is the display fallback when no method was
// recorded anywhere along the precedence chain.
const DefaultPaymentMethod = "stripe_card"

// PaymentStatus is the display status of the parent-facing aggregate.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is the parent-facing aggregate: the one "current amount owed"
// row shown per parent, derived from the authoritative plan.
type Payment struct {
	ID            int32           `json:"id"`
	ProgramID     int32           `json:"programId"`
	ParentID      int32           `json:"parentId"`
	PlanID        int32           `json:"planId"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	RemindersSent int32           `json:"remindersSent"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NextUnpaidInstallment returns the earliest unpaid installment by due
// date, or nil when the plan is fully paid.
func NextUnpaidInstallment(installments []*Installment) *Installment {
	var next *Installment
	for _, inst := range installments {
		if inst.IsPaid() {
			continue
		}
		if next == nil || inst.DueDate.Before(next.DueDate) {
			next = inst
		}
	}
	return next
}

// DeriveFromInstallments rewrites the aggregate's amount, status, and
// due date from the plan's installments. The earliest unpaid installment
// drives all three fields; a fully paid plan owes nothing.
func (p *Payment) DeriveFromInstallments(installments []*Installment) {
	next := NextUnpaidInstallment(installments)
	if next == nil {
		p.Amount = decimal.Zero
		p.Status = PaymentStatusPaid
		p.DueDate = nil
		return
	}
	p.Amount = next.Amount
	p.Status = PaymentStatusPending
	due := next.DueDate
	p.DueDate = &due
}

// DedupeByParent collapses multiple payment rows per parent down to the
// most recently created one. Ties on createdAt are broken by the greater
// id so the result is a total order and stable across refetches. Output
// is sorted by parentId for deterministic rendering.
func DedupeByParent(payments []*Payment) []*Payment {
	latest := make(map[int32]*Payment, len(payments))
	for _, p := range payments {
		cur, ok := latest[p.ParentID]
		if !ok {
			latest[p.ParentID] = p
			continue
		}
		if p.CreatedAt.After(cur.CreatedAt) ||
			(p.CreatedAt.Equal(cur.CreatedAt) && p.ID > cur.ID) {
			latest[p.ParentID] = p
		}
	}

	result := make([]*Payment, 0, len(latest))
	for _, p := range latest {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParentID < result[j].ParentID
	})
	return result
}

// ResolvePaymentMethod resolves the display payment method for an
// installment from potentially conflicting sources. Precedence, in order:
// the installment's own method, the plan's method, the first
// installment's recorded method, then DefaultPaymentMethod. The order is
// load-bearing: changing it rewrites historical display values.
func ResolvePaymentMethod(inst *Installment, plan *PaymentPlan, first *Installment) string {
	if inst != nil && inst.PaymentMethod != nil && *inst.PaymentMethod != "" {
		return *inst.PaymentMethod
	}
	if plan != nil && plan.PaymentMethod != nil && *plan.PaymentMethod != "" {
		return *plan.PaymentMethod
	}
	if first != nil && first.PaymentMethod != nil && *first.PaymentMethod != "" {
		return *first.PaymentMethod
	}
	return DefaultPaymentMethod
}

type PaymentRepository interface {
	Create(payment *Payment) (*Payment, error)
	GetByID(programID int32, id int32) (*Payment, error)
	GetAllByProgram(programID int32) ([]*Payment, error)
	GetByParent(programID int32, parentID int32) ([]*Payment, error)
	// ListPastDue returns payments across all programs whose due date is
	// before the cutoff and whose status is not paid. Used by the worker.
	ListPastDue(cutoff time.Time) ([]*Payment, error)
	IncrementReminders(id int32) error
	Update(payment *Payment) (*Payment, error)
	UpdateStatus(id int32, status PaymentStatus) (*Payment, error)
}
