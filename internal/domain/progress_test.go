package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testPlan(total int64, count int32) *PaymentPlan {
	installment := decimal.NewFromInt(total).Div(decimal.NewFromInt32(count)).Round(2)
	return &PaymentPlan{
		ID:                1,
		ProgramID:         1,
		ParentID:          1,
		TotalAmount:       decimal.NewFromInt(total),
		InstallmentAmount: installment,
		InstallmentCount:  count,
		Type:              PlanTypeMonthly,
		Status:            PlanStatusActive,
	}
}

func testInstallments(plan *PaymentPlan, start time.Time) []*Installment {
	installments := make([]*Installment, plan.InstallmentCount)
	for i := range installments {
		installments[i] = &Installment{
			ID:      int32(i + 1),
			PlanID:  plan.ID,
			Number:  int32(i + 1),
			Amount:  plan.InstallmentAmount,
			DueDate: start.AddDate(0, i, 0),
			Status:  InstallmentStatusPending,
		}
	}
	return installments
}

func TestComputeProgress_FirstInstallmentPaid(t *testing.T) {
	now := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	plan := testPlan(1200, 12)
	installments := testInstallments(plan, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))

	paidAt := now
	installments[0].Status = InstallmentStatusPaid
	installments[0].PaidAt = &paidAt

	snap := ComputeProgress(plan, installments, now)

	assert.True(t, snap.PaidAmount.Equal(decimal.NewFromInt(100)), "paidAmount = %s", snap.PaidAmount)
	assert.True(t, snap.RemainingAmount.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, int32(8), snap.ProgressPercentage)
	assert.Equal(t, int32(1), snap.PaidInstallments)
	assert.Equal(t, int32(12), snap.TotalInstallments)
	assert.NotNil(t, snap.NextDue)
	assert.True(t, snap.NextDue.Equal(installments[1].DueDate), "nextDue should be installment #2")
}

func TestComputeProgress_Conservation(t *testing.T) {
	now := time.Now()
	plan := testPlan(900, 9)
	installments := testInstallments(plan, now.AddDate(0, -3, 0))

	for i := 0; i < 4; i++ {
		installments[i].Status = InstallmentStatusPaid
	}

	snap := ComputeProgress(plan, installments, now)
	assert.True(t, snap.PaidAmount.Add(snap.RemainingAmount).Equal(plan.TotalAmount),
		"paid + remaining must equal total")
	assert.False(t, snap.RemainingAmount.IsNegative())
}

func TestComputeProgress_ZeroTotalAmount(t *testing.T) {
	plan := testPlan(1200, 12)
	plan.TotalAmount = decimal.Zero
	installments := testInstallments(plan, time.Now())

	snap := ComputeProgress(plan, installments, time.Now())
	assert.Equal(t, int32(0), snap.ProgressPercentage, "zero total yields 0%, not an error")
}

func TestComputeProgress_OverpaymentClampsTo100(t *testing.T) {
	now := time.Now()
	plan := testPlan(100, 2)
	installments := testInstallments(plan, now)
	// Overpayment edge case: installments exceed the plan total.
	installments[0].Amount = decimal.NewFromInt(90)
	installments[1].Amount = decimal.NewFromInt(90)
	installments[0].Status = InstallmentStatusPaid
	installments[1].Status = InstallmentStatusPaid

	snap := ComputeProgress(plan, installments, now)
	assert.Equal(t, int32(100), snap.ProgressPercentage)
	assert.True(t, snap.RemainingAmount.Equal(decimal.Zero), "remaining is floored at zero")
}

func TestComputeProgress_OverdueIsReadTimeClassification(t *testing.T) {
	now := time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)
	plan := testPlan(300, 3)
	installments := testInstallments(plan, now.AddDate(0, -2, 0))

	// #1 and #2 are past due, #3 is in the future.
	snap := ComputeProgress(plan, installments, now)
	assert.Equal(t, int32(2), snap.OverdueCount)
	assert.True(t, snap.OverdueAmount.Equal(decimal.NewFromInt(200)))

	// Classification must not mutate the stored status.
	assert.Equal(t, InstallmentStatusPending, installments[0].Status)
	assert.Equal(t, InstallmentStatusPending, installments[1].Status)
}

func TestComputeProgress_StoredOverdueNotDoubleCounted(t *testing.T) {
	now := time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)
	plan := testPlan(300, 3)
	installments := testInstallments(plan, now.AddDate(0, -2, 0))

	// Same past-due installment in both representations: the stored
	// literal on #1 and a derived pending-past-due on #2.
	installments[0].Status = InstallmentStatusOverdue

	snap := ComputeProgress(plan, installments, now)
	assert.Equal(t, int32(2), snap.OverdueCount, "each late installment counts exactly once")
}

func TestComputeProgress_NextDueIsEarliestUnpaid(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	plan := testPlan(400, 4)
	installments := testInstallments(plan, now)
	installments[0].Status = InstallmentStatusPaid
	installments[1].Status = InstallmentStatusPaid

	snap := ComputeProgress(plan, installments, now)
	assert.NotNil(t, snap.NextDue)
	assert.True(t, snap.NextDue.Equal(installments[2].DueDate))
}

func TestComputeProgress_AllPaidHasNoNextDue(t *testing.T) {
	now := time.Now()
	plan := testPlan(200, 2)
	installments := testInstallments(plan, now)
	installments[0].Status = InstallmentStatusPaid
	installments[1].Status = InstallmentStatusPaid

	snap := ComputeProgress(plan, installments, now)
	assert.Nil(t, snap.NextDue)
	assert.Equal(t, int32(100), snap.ProgressPercentage)
}

func TestComputeProgress_NoInstallments(t *testing.T) {
	plan := testPlan(1200, 12)
	snap := ComputeProgress(plan, nil, time.Now())
	assert.Equal(t, int32(0), snap.TotalInstallments)
	assert.Equal(t, int32(0), snap.ProgressPercentage)
	assert.True(t, snap.RemainingAmount.Equal(plan.TotalAmount))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)

	pastDue := &Installment{Status: InstallmentStatusPending, DueDate: now.AddDate(0, 0, -10)}
	assert.True(t, pastDue.IsOverdue(now), "pending 10 days past due is overdue")

	stored := &Installment{Status: InstallmentStatusOverdue, DueDate: now.AddDate(0, 0, -10)}
	assert.True(t, stored.IsOverdue(now))

	future := &Installment{Status: InstallmentStatusPending, DueDate: now.AddDate(0, 0, 10)}
	assert.False(t, future.IsOverdue(now))

	paid := &Installment{Status: InstallmentStatusPaid, DueDate: now.AddDate(0, 0, -10)}
	assert.False(t, paid.IsOverdue(now), "paid installments are never overdue")
}
