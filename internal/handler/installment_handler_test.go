package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func setupAuthContext(c echo.Context, subject string, programID int32) {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     &middleware.CustomClaims{Email: "admin@example.com"},
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.SubjectKey, subject)
	if programID > 0 {
		ctx = context.WithValue(ctx, middleware.ProgramIDKey, programID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

func newInstallmentHandlerFixture() (*InstallmentHandler, *testutil.MockInstallmentRepository, *testutil.MockPaymentPlanRepository) {
	instRepo := testutil.NewMockInstallmentRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	auditRepo := testutil.NewMockAuditRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	parentRepo := testutil.NewMockParentRepository()
	installmentService := service.NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)
	chargeService := service.NewChargeService(&testutil.MockGateway{}, instRepo, planRepo, paymentRepo, parentRepo, auditRepo, "https://app.test/ok", "https://app.test/no")
	h := NewInstallmentHandler(installmentService, chargeService)

	planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount:      decimal.NewFromInt(200),
		InstallmentCount: 2,
		Status:           domain.PlanStatusActive,
	})
	now := time.Now()
	instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount: decimal.NewFromInt(100),
		Status: domain.InstallmentStatusPaid,
		PaidAt: &now, ManuallyMarked: true,
	})
	instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 1, Number: 2,
		Amount: decimal.NewFromInt(100),
		Status: domain.InstallmentStatusPending,
	})
	return h, instRepo, planRepo
}

func TestMarkPaidHandler_Success(t *testing.T) {
	e := echo.New()
	h, _, _ := newInstallmentHandlerFixture()

	body := `{"paymentMethod":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/installments/2/mark-paid", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	setupAuthContext(c, "auth0|admin", 1)

	if err := h.MarkPaid(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.InstallmentResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.Installment.Status != domain.InstallmentStatusPaid {
		t.Errorf("Expected status paid, got %s", result.Installment.Status)
	}
	if !result.Progress.PaidAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected paid amount 200, got %s", result.Progress.PaidAmount)
	}
}

func TestMarkPaidHandler_GatewayPaidConflict(t *testing.T) {
	e := echo.New()
	h, instRepo, _ := newInstallmentHandlerFixture()

	chargeID := "cs_test_1"
	now := time.Now()
	inst, _ := instRepo.GetByID(2)
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &now
	inst.GatewayChargeID = &chargeID

	req := httptest.NewRequest(http.MethodPost, "/api/v1/installments/2/mark-paid", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	setupAuthContext(c, "auth0|admin", 1)

	if err := h.MarkPaid(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeConflict {
		t.Errorf("Expected conflict problem type, got %s", problem.Type)
	}
}

func TestRevertHandler_NotManualConflict(t *testing.T) {
	e := echo.New()
	h, _, _ := newInstallmentHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/installments/2/revert", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	setupAuthContext(c, "auth0|admin", 1)

	if err := h.Revert(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}
}

func TestMarkPaidHandler_WrongProgramIsNotFound(t *testing.T) {
	e := echo.New()
	h, _, _ := newInstallmentHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/installments/2/mark-paid", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")
	setupAuthContext(c, "auth0|other", 99)

	if err := h.MarkPaid(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}
