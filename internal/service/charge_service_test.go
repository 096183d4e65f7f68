package service

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChargeFixture() (*ChargeService, *testutil.MockGateway, *testutil.MockInstallmentRepository, *testutil.MockPaymentPlanRepository, *testutil.MockParentRepository, *testutil.MockAuditRepository) {
	gw := &testutil.MockGateway{}
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	parentRepo := testutil.NewMockParentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	svc := NewChargeService(gw, instRepo, planRepo, paymentRepo, parentRepo, auditRepo,
		"https://app.example.com/success", "https://app.example.com/cancel")
	return svc, gw, instRepo, planRepo, parentRepo, auditRepo
}

func seedChargeableInstallment(instRepo *testutil.MockInstallmentRepository, planRepo *testutil.MockPaymentPlanRepository, parentRepo *testutil.MockParentRepository) {
	parentRepo.AddParent(&domain.Parent{
		ID: 10, ProgramID: 1,
		FirstName: "Dana", LastName: "Lee",
		Email: "dana@example.com",
	})
	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount:      decimal.NewFromInt(300),
		InstallmentCount: 3,
		Status:           domain.PlanStatusActive,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 2,
		Amount:  decimal.NewFromInt(100),
		DueDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		Status:  domain.InstallmentStatusPending,
	})
}

func TestInitiateCharge_StoresCorrelationID(t *testing.T) {
	svc, gw, instRepo, planRepo, parentRepo, _ := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)

	require.Len(t, gw.Sessions, 1)
	req := gw.Sessions[0]
	assert.Equal(t, int32(1), req.InstallmentID)
	assert.Equal(t, "dana@example.com", req.CustomerEmail)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(100)))

	inst, err := instRepo.GetByID(1)
	require.NoError(t, err)
	require.NotNil(t, inst.GatewayChargeID)
	assert.Equal(t, session.ID, *inst.GatewayChargeID)
}

func TestInitiateCharge_RejectsPaidInstallment(t *testing.T) {
	svc, _, instRepo, planRepo, parentRepo, _ := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	now := time.Now()
	inst, _ := instRepo.GetByID(1)
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &now

	_, err := svc.InitiateCharge(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrInstallmentGatewayPaid)
}

func TestHandleGatewayEvent_SuccessMarksGatewayPaid(t *testing.T) {
	svc, _, instRepo, planRepo, parentRepo, auditRepo := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.HandleGatewayEvent(&gateway.ChargeEvent{
		Type:     gateway.ChargeSucceeded,
		ChargeID: session.ID,
		Method:   "stripe_card",
	})
	require.NoError(t, err)

	inst, err := instRepo.GetByID(1)
	require.NoError(t, err)
	assert.True(t, inst.IsGatewayPaid())
	assert.False(t, inst.ManuallyMarked)
	require.NotNil(t, inst.PaymentMethod)
	assert.Equal(t, "stripe_card", *inst.PaymentMethod)

	require.Len(t, auditRepo.Entries, 1)
	assert.Equal(t, domain.AuditGatewayConfirmed, auditRepo.Entries[0].Action)
}

func TestHandleGatewayEvent_UnknownChargeAcknowledged(t *testing.T) {
	svc, _, _, _, _, auditRepo := newChargeFixture()

	err := svc.HandleGatewayEvent(&gateway.ChargeEvent{
		Type:     gateway.ChargeSucceeded,
		ChargeID: "cs_unknown",
	})
	assert.NoError(t, err, "webhooks for unknown charges must not trigger gateway retries")
	assert.Empty(t, auditRepo.Entries)
}

func TestHandleGatewayEvent_DuplicateDeliveryIsIdempotent(t *testing.T) {
	svc, _, instRepo, planRepo, parentRepo, auditRepo := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)

	event := &gateway.ChargeEvent{Type: gateway.ChargeSucceeded, ChargeID: session.ID, Method: "stripe_card"}
	require.NoError(t, svc.HandleGatewayEvent(event))
	require.NoError(t, svc.HandleGatewayEvent(event))

	assert.Len(t, auditRepo.Entries, 1, "second delivery changes nothing")
}

func TestHandleGatewayEvent_FailureAuditsOnly(t *testing.T) {
	svc, _, instRepo, planRepo, parentRepo, auditRepo := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.HandleGatewayEvent(&gateway.ChargeEvent{
		Type:     gateway.ChargeFailed,
		ChargeID: session.ID,
	})
	require.NoError(t, err)

	inst, _ := instRepo.GetByID(1)
	assert.Equal(t, domain.InstallmentStatusPending, inst.Status)

	require.Len(t, auditRepo.Entries, 1)
	assert.Equal(t, domain.AuditGatewayFailed, auditRepo.Entries[0].Action)
}

func TestHandleGatewayEvent_SuccessSyncsOwedPaymentRow(t *testing.T) {
	gw := &testutil.MockGateway{}
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	parentRepo := testutil.NewMockParentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	svc := NewChargeService(gw, instRepo, planRepo, paymentRepo, parentRepo, auditRepo, "", "")
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	due := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	paymentRepo.AddPayment(&domain.Payment{
		ID: 1, ProgramID: 1, ParentID: 10, PlanID: 1,
		Amount:  decimal.NewFromInt(100),
		Status:  domain.PaymentStatusPending,
		DueDate: &due,
	})

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.HandleGatewayEvent(&gateway.ChargeEvent{
		Type:     gateway.ChargeSucceeded,
		ChargeID: session.ID,
		Method:   "stripe_card",
	})
	require.NoError(t, err)

	payment, err := paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
	assert.True(t, payment.Amount.IsZero())
	assert.Nil(t, payment.DueDate)
}

func TestHandleGatewayEvent_LastInstallmentCompletesPlan(t *testing.T) {
	svc, _, instRepo, planRepo, parentRepo, _ := newChargeFixture()
	seedChargeableInstallment(instRepo, planRepo, parentRepo)

	session, err := svc.InitiateCharge(context.Background(), 1, 1)
	require.NoError(t, err)

	err = svc.HandleGatewayEvent(&gateway.ChargeEvent{
		Type:     gateway.ChargeSucceeded,
		ChargeID: session.ID,
		Method:   "stripe_card",
	})
	require.NoError(t, err)

	plan, err := planRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusCompleted, plan.Status)
}
