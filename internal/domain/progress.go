package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProgressSnapshot is the derived summary of a plan's payment progress.
// It is computed at read time and never persisted.
type ProgressSnapshot struct {
	PaidAmount         decimal.Decimal `json:"paidAmount"`
	RemainingAmount    decimal.Decimal `json:"remainingAmount"`
	ProgressPercentage int32           `json:"progressPercentage"`
	PaidInstallments   int32           `json:"paidInstallments"`
	TotalInstallments  int32           `json:"totalInstallments"`
	NextDue            *time.Time      `json:"nextDue,omitempty"`
	OverdueCount       int32           `json:"overdueCount"`
	OverdueAmount      decimal.Decimal `json:"overdueAmount"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeProgress derives the progress snapshot for a plan from its
// installment set at the given instant. Pure function: no side effects.
//
//   - paidAmount sums installments with status paid
//   - remainingAmount = totalAmount - paidAmount, floored at zero
//   - progressPercentage is clamped to [0,100]; a zero totalAmount yields
//     0%, not an error
//   - nextDue is the earliest unpaid installment's due date
//   - the overdue bucket uses Installment.IsOverdue, so stored literals
//     and pending-past-due rows are counted once
func ComputeProgress(plan *PaymentPlan, installments []*Installment, now time.Time) ProgressSnapshot {
	snap := ProgressSnapshot{
		PaidAmount:        decimal.Zero,
		RemainingAmount:   decimal.Zero,
		OverdueAmount:     decimal.Zero,
		TotalInstallments: int32(len(installments)),
	}

	var nextDue *time.Time
	for _, inst := range installments {
		if inst.IsPaid() {
			snap.PaidAmount = snap.PaidAmount.Add(inst.Amount)
			snap.PaidInstallments++
			continue
		}
		if inst.IsOverdue(now) {
			snap.OverdueCount++
			snap.OverdueAmount = snap.OverdueAmount.Add(inst.Amount)
		}
		if nextDue == nil || inst.DueDate.Before(*nextDue) {
			due := inst.DueDate
			nextDue = &due
		}
	}
	snap.NextDue = nextDue

	snap.RemainingAmount = plan.TotalAmount.Sub(snap.PaidAmount)
	if snap.RemainingAmount.IsNegative() {
		snap.RemainingAmount = decimal.Zero
	}

	if plan.TotalAmount.IsPositive() {
		pct := snap.PaidAmount.Div(plan.TotalAmount).Mul(oneHundred).Round(0)
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		if pct.GreaterThan(oneHundred) {
			pct = oneHundred
		}
		snap.ProgressPercentage = int32(pct.IntPart())
	}

	return snap
}
