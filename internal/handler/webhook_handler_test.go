package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newWebhookFixture(gw *testutil.MockGateway) (*WebhookHandler, *testutil.MockInstallmentRepository) {
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	parentRepo := testutil.NewMockParentRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	auditRepo := testutil.NewMockAuditRepository()
	chargeService := service.NewChargeService(gw, instRepo, planRepo, paymentRepo, parentRepo, auditRepo, "", "")

	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount:      decimal.NewFromInt(200),
		InstallmentCount: 2,
		Status:           domain.PlanStatusActive,
	})
	chargeID := "cs_test_hook"
	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount:          decimal.NewFromInt(100),
		Status:          domain.InstallmentStatusPending,
		GatewayChargeID: &chargeID,
	})

	return NewWebhookHandler(gw, chargeService), instRepo
}

func postWebhook(t *testing.T, h *WebhookHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.HandleStripe(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec
}

func TestHandleStripe_SucceededMarksInstallment(t *testing.T) {
	gw := &testutil.MockGateway{
		NextEvent: &gateway.ChargeEvent{
			Type:     gateway.ChargeSucceeded,
			ChargeID: "cs_test_hook",
			Method:   "stripe_card",
		},
	}
	h, instRepo := newWebhookFixture(gw)

	rec := postWebhook(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	inst, _ := instRepo.GetByID(1)
	if !inst.IsGatewayPaid() {
		t.Error("Expected installment to be gateway paid")
	}
}

func TestHandleStripe_IgnoredEventAcknowledged(t *testing.T) {
	gw := &testutil.MockGateway{}
	h, instRepo := newWebhookFixture(gw)

	rec := postWebhook(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	inst, _ := instRepo.GetByID(1)
	if inst.Status != domain.InstallmentStatusPending {
		t.Errorf("Expected installment untouched, got %s", inst.Status)
	}
}
