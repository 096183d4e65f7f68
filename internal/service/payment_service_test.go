package service

import (
	"testing"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentFixture() (*PaymentService, *testutil.MockPaymentRepository, *testutil.MockPaymentPlanRepository, *testutil.MockInstallmentRepository, *testutil.MockParentRepository) {
	paymentRepo := testutil.NewMockPaymentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	instRepo := testutil.NewMockInstallmentRepository()
	parentRepo := testutil.NewMockParentRepository()
	svc := NewPaymentService(paymentRepo, planRepo, instRepo, parentRepo)
	return svc, paymentRepo, planRepo, instRepo, parentRepo
}

func TestListPayments_OneRowPerParent(t *testing.T) {
	svc, paymentRepo, _, _, _ := newPaymentFixture()

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	paymentRepo.AddPayment(&domain.Payment{ID: 1, ProgramID: 1, ParentID: 10, CreatedAt: base})
	paymentRepo.AddPayment(&domain.Payment{ID: 2, ProgramID: 1, ParentID: 10, CreatedAt: base.AddDate(0, 0, 1)})
	paymentRepo.AddPayment(&domain.Payment{ID: 3, ProgramID: 1, ParentID: 11, CreatedAt: base})
	paymentRepo.AddPayment(&domain.Payment{ID: 4, ProgramID: 2, ParentID: 10, CreatedAt: base})

	payments, err := svc.ListPayments(1)
	require.NoError(t, err)

	require.Len(t, payments, 2)
	assert.Equal(t, int32(10), payments[0].ParentID)
	assert.Equal(t, int32(2), payments[0].ID, "latest row wins for the duplicated parent")
	assert.Equal(t, int32(11), payments[1].ParentID)
}

func TestGetParentSummary_AuthoritativePlanWins(t *testing.T) {
	svc, _, planRepo, instRepo, parentRepo := newPaymentFixture()
	parentRepo.AddParent(&domain.Parent{ID: 10, ProgramID: 1, FirstName: "Sam", LastName: "Ortiz", Email: "sam@example.com"})

	// Duplicate plans; the one with the larger total is authoritative
	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount: decimal.NewFromInt(600),
		Status:      domain.PlanStatusActive,
	})
	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 2, ProgramID: 1, ParentID: 10,
		TotalAmount: decimal.NewFromInt(1200),
		Status:      domain.PlanStatusActive,
	})

	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 2, Number: 1,
		Amount: decimal.NewFromInt(100),
		Status: domain.InstallmentStatusPaid,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 2, Number: 2,
		Amount: decimal.NewFromInt(100),
		Status: domain.InstallmentStatusPending,
	})

	summary, err := svc.GetParentSummary(1, 10)
	require.NoError(t, err)

	require.NotNil(t, summary.Plan)
	assert.Equal(t, int32(2), summary.Plan.ID)
	assert.Len(t, summary.Installments, 2)
	assert.True(t, summary.Progress.PaidAmount.Equal(decimal.NewFromInt(100)))
}

func TestGetParentSummary_MethodPrecedence(t *testing.T) {
	svc, _, planRepo, instRepo, parentRepo := newPaymentFixture()
	parentRepo.AddParent(&domain.Parent{ID: 10, ProgramID: 1, FirstName: "Sam", LastName: "Ortiz", Email: "sam@example.com"})

	planMethod := "stripe_ach"
	ownMethod := "cash"
	firstMethod := "check"
	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount:   decimal.NewFromInt(300),
		Status:        domain.PlanStatusActive,
		PaymentMethod: &planMethod,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount:        decimal.NewFromInt(100),
		Status:        domain.InstallmentStatusPaid,
		PaymentMethod: &firstMethod,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 1, Number: 2,
		Amount:        decimal.NewFromInt(100),
		Status:        domain.InstallmentStatusPaid,
		PaymentMethod: &ownMethod,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 3, PlanID: 1, Number: 3,
		Amount: decimal.NewFromInt(100),
		Status: domain.InstallmentStatusPending,
	})

	summary, err := svc.GetParentSummary(1, 10)
	require.NoError(t, err)
	require.Len(t, summary.Installments, 3)

	assert.Equal(t, "check", summary.Installments[0].ResolvedMethod, "own method")
	assert.Equal(t, "cash", summary.Installments[1].ResolvedMethod, "own method beats plan's")
	assert.Equal(t, "stripe_ach", summary.Installments[2].ResolvedMethod, "plan method beats first installment's")
}

func TestGetParentSummary_NoPlans(t *testing.T) {
	svc, _, _, _, parentRepo := newPaymentFixture()
	parentRepo.AddParent(&domain.Parent{ID: 10, ProgramID: 1, FirstName: "Sam", LastName: "Ortiz", Email: "sam@example.com"})

	summary, err := svc.GetParentSummary(1, 10)
	require.NoError(t, err)
	assert.Nil(t, summary.Plan)
	assert.Empty(t, summary.Installments)
}
