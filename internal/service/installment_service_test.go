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

func newInstallmentFixture() (*InstallmentService, *testutil.MockInstallmentRepository, *testutil.MockPaymentPlanRepository, *testutil.MockAuditRepository) {
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	svc := NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)
	return svc, instRepo, planRepo, auditRepo
}

// seedPlanWithInstallments sets up an active 3-installment plan with the
// first installment manually paid
func seedPlanWithInstallments(planRepo *testutil.MockPaymentPlanRepository, instRepo *testutil.MockInstallmentRepository) {
	planRepo.AddPlan(&domain.PaymentPlan{
		ID:               1,
		ProgramID:        1,
		ParentID:         10,
		TotalAmount:      decimal.NewFromInt(300),
		InstallmentCount: 3,
		Status:           domain.PlanStatusActive,
	})

	now := time.Now()
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount:  decimal.NewFromInt(100),
		DueDate: start,
		Status:  domain.InstallmentStatusPaid,
		PaidAt:  &now, ManuallyMarked: true,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 1, Number: 2,
		Amount:  decimal.NewFromInt(100),
		DueDate: start.AddDate(0, 1, 0),
		Status:  domain.InstallmentStatusPending,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 3, PlanID: 1, Number: 3,
		Amount:  decimal.NewFromInt(100),
		DueDate: start.AddDate(0, 2, 0),
		Status:  domain.InstallmentStatusPending,
	})
}

func TestMarkPaid_UpdatesSnapshotAndAudits(t *testing.T) {
	svc, instRepo, planRepo, auditRepo := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	method := "cash"
	result, err := svc.MarkPaid(1, 2, MarkPaidInput{PaymentMethod: &method})
	require.NoError(t, err)

	assert.True(t, result.Installment.IsPaid())
	assert.True(t, result.Installment.ManuallyMarked)
	require.NotNil(t, result.Installment.PaymentMethod)
	assert.Equal(t, "cash", *result.Installment.PaymentMethod)

	assert.True(t, result.Progress.PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int32(2), result.Progress.PaidInstallments)

	require.Len(t, auditRepo.Entries, 1)
	assert.Equal(t, domain.AuditMarkedPaid, auditRepo.Entries[0].Action)
	assert.Equal(t, int32(2), auditRepo.Entries[0].EntityID)
}

func TestMarkPaid_AlreadyManualIsNoOp(t *testing.T) {
	svc, instRepo, planRepo, auditRepo := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	result, err := svc.MarkPaid(1, 1, MarkPaidInput{})
	require.NoError(t, err)
	assert.True(t, result.Installment.IsPaid())
	assert.Empty(t, auditRepo.Entries, "no-op must not add audit entries")
}

func TestMarkPaid_GatewayPaidConflicts(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	chargeID := "cs_test_123"
	now := time.Now()
	inst, _ := instRepo.GetByID(2)
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &now
	inst.ManuallyMarked = false
	inst.GatewayChargeID = &chargeID

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	assert.ErrorIs(t, err, domain.ErrInstallmentGatewayPaid)
}

func TestMarkPaid_WrongProgram(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	_, err := svc.MarkPaid(99, 2, MarkPaidInput{})
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestMarkPaid_LastInstallmentCompletesPlan(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)
	_, err = svc.MarkPaid(1, 3, MarkPaidInput{})
	require.NoError(t, err)

	plan, err := planRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusCompleted, plan.Status)
}

func TestRevert_RoundTripsSnapshot(t *testing.T) {
	svc, instRepo, planRepo, auditRepo := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	before, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)
	assert.True(t, before.Progress.PaidAmount.Equal(decimal.NewFromInt(200)))

	after, err := svc.Revert(1, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.InstallmentStatusPending, after.Installment.Status)
	assert.Nil(t, after.Installment.PaidAt)
	assert.False(t, after.Installment.ManuallyMarked)
	assert.True(t, after.Progress.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int32(1), after.Progress.PaidInstallments)

	require.Len(t, auditRepo.Entries, 2)
	assert.Equal(t, domain.AuditRevertedPending, auditRepo.Entries[1].Action)
}

func TestRevert_PendingConflicts(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	_, err := svc.Revert(1, 2)
	assert.ErrorIs(t, err, domain.ErrInstallmentNotManual)
}

func TestRevert_GatewayPaidConflicts(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	chargeID := "cs_test_123"
	now := time.Now()
	inst, _ := instRepo.GetByID(2)
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &now
	inst.GatewayChargeID = &chargeID

	_, err := svc.Revert(1, 2)
	assert.ErrorIs(t, err, domain.ErrInstallmentGatewayPaid)
}

func TestRevert_ReopensCompletedPlan(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)
	_, err = svc.MarkPaid(1, 3, MarkPaidInput{})
	require.NoError(t, err)

	plan, _ := planRepo.GetByID(1, 1)
	require.Equal(t, domain.PlanStatusCompleted, plan.Status)

	_, err = svc.Revert(1, 3)
	require.NoError(t, err)

	plan, _ = planRepo.GetByID(1, 1)
	assert.Equal(t, domain.PlanStatusActive, plan.Status)
}

// The parent-facing payment row must track the installment schedule: it
// carries the next unpaid installment while the plan is open, and goes
// fully paid (nothing owed, no due date) once the last installment lands,
// so the reminder sweep stops picking the parent up.
func TestMarkPaid_SyncsOwedPaymentRow(t *testing.T) {
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	svc := NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)
	seedPlanWithInstallments(planRepo, instRepo)

	secondDue := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	paymentRepo.AddPayment(&domain.Payment{
		ID: 1, ProgramID: 1, ParentID: 10, PlanID: 1,
		Amount:  decimal.NewFromInt(100),
		Status:  domain.PaymentStatusPending,
		DueDate: &secondDue,
	})

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)

	payment, err := paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	require.NotNil(t, payment.DueDate)
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), *payment.DueDate)

	_, err = svc.MarkPaid(1, 3, MarkPaidInput{})
	require.NoError(t, err)

	payment, err = paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
	assert.True(t, payment.Amount.IsZero())
	assert.Nil(t, payment.DueDate)

	pastDue, err := paymentRepo.ListPastDue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, pastDue, "fully paid plan must not surface in the reminder sweep")
}

func TestRevert_ReopensOwedPaymentRow(t *testing.T) {
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	svc := NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)
	seedPlanWithInstallments(planRepo, instRepo)

	secondDue := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	paymentRepo.AddPayment(&domain.Payment{
		ID: 1, ProgramID: 1, ParentID: 10, PlanID: 1,
		Amount:  decimal.NewFromInt(100),
		Status:  domain.PaymentStatusPending,
		DueDate: &secondDue,
	})

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)
	_, err = svc.MarkPaid(1, 3, MarkPaidInput{})
	require.NoError(t, err)

	_, err = svc.Revert(1, 3)
	require.NoError(t, err)

	payment, err := paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, payment.DueDate)
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), *payment.DueDate)
}

func TestMarkPaid_AuditFailureDoesNotBlock(t *testing.T) {
	svc, instRepo, planRepo, auditRepo := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)
	auditRepo.FailAll = true

	result, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)
	assert.True(t, result.Installment.IsPaid())
}

func TestMarkPaid_PublishesEvents(t *testing.T) {
	svc, instRepo, planRepo, _ := newInstallmentFixture()
	seedPlanWithInstallments(planRepo, instRepo)

	publisher := &testutil.MockPublisher{}
	svc.SetEventPublisher(publisher)

	_, err := svc.MarkPaid(1, 2, MarkPaidInput{})
	require.NoError(t, err)

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, "installment.marked_paid", publisher.Events[0].Event.Type)
}

// Exercises the full plan lifecycle: a 1200/12 monthly plan whose first
// installment is collected at signup, then a manual mark and revert of
// the second.
func TestPlanLifecycle_MarkAndRevert(t *testing.T) {
	planRepo := testutil.NewMockPaymentPlanRepository()
	instRepo := testutil.NewMockInstallmentRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	parentRepo := testutil.NewMockParentRepository()
	auditRepo := testutil.NewMockAuditRepository()

	parentRepo.AddParent(&domain.Parent{
		ID: 10, ProgramID: 1,
		FirstName: "Jordan", LastName: "Rivera",
		Email: "jordan@example.com",
	})

	planService := NewPlanService(planRepo, instRepo, paymentRepo, parentRepo)
	installmentService := NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)

	detail, err := planService.CreatePlan(1, CreatePlanInput{
		ParentID:          10,
		TotalAmount:       decimal.NewFromInt(1200),
		InstallmentAmount: decimal.NewFromInt(100),
		InstallmentCount:  12,
		Type:              domain.PlanTypeMonthly,
		StartDate:         time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, detail.Progress.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int32(1), detail.Progress.PaidInstallments)
	assert.Equal(t, int32(8), detail.Progress.ProgressPercentage)
	require.NotNil(t, detail.Progress.NextDue)
	assert.Equal(t, detail.Installments[1].DueDate, *detail.Progress.NextDue)

	second := detail.Installments[1]

	marked, err := installmentService.MarkPaid(1, second.ID, MarkPaidInput{})
	require.NoError(t, err)
	assert.True(t, marked.Progress.PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int32(2), marked.Progress.PaidInstallments)

	reverted, err := installmentService.Revert(1, second.ID)
	require.NoError(t, err)
	assert.True(t, reverted.Progress.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int32(1), reverted.Progress.PaidInstallments)
	require.NotNil(t, reverted.Progress.NextDue)
	assert.Equal(t, second.DueDate, *reverted.Progress.NextDue)
}
