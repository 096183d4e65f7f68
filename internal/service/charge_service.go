package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ChargeService drives real money movement through the payment gateway:
// creating checkout sessions and applying webhook outcomes.
type ChargeService struct {
	gateway        gateway.PaymentGateway
	instRepo       domain.InstallmentRepository
	planRepo       domain.PaymentPlanRepository
	paymentRepo    domain.PaymentRepository
	parentRepo     domain.ParentRepository
	auditRepo      domain.AuditRepository
	successURL     string
	cancelURL      string
	eventPublisher websocket.EventPublisher
}

// NewChargeService creates a new ChargeService
func NewChargeService(gw gateway.PaymentGateway, instRepo domain.InstallmentRepository, planRepo domain.PaymentPlanRepository, paymentRepo domain.PaymentRepository, parentRepo domain.ParentRepository, auditRepo domain.AuditRepository, successURL, cancelURL string) *ChargeService {
	return &ChargeService{
		gateway:     gw,
		instRepo:    instRepo,
		planRepo:    planRepo,
		paymentRepo: paymentRepo,
		parentRepo:  parentRepo,
		auditRepo:   auditRepo,
		successURL:  successURL,
		cancelURL:   cancelURL,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ChargeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ChargeService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// InitiateCharge creates a hosted checkout session for an installment and
// stores the session id on the installment so the webhook can correlate
// the eventual outcome.
func (s *ChargeService) InitiateCharge(ctx context.Context, programID int32, installmentID int32) (*gateway.CheckoutSession, error) {
	inst, err := s.instRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(programID, inst.PlanID)
	if err != nil {
		return nil, err
	}
	if inst.IsPaid() {
		return nil, domain.ErrInstallmentGatewayPaid
	}

	parent, err := s.parentRepo.GetByID(programID, plan.ParentID)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		InstallmentID: inst.ID,
		Description:   fmt.Sprintf("Installment %d of %d for %s", inst.Number, plan.InstallmentCount, parent.FullName()),
		Amount:        inst.Amount,
		Currency:      "usd",
		CustomerEmail: parent.Email,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.instRepo.SetGatewayChargeID(inst.ID, session.ID); err != nil {
		return nil, err
	}

	log.Info().
		Int32("installment_id", inst.ID).
		Str("session_id", session.ID).
		Msg("Created checkout session")
	return session, nil
}

// HandleGatewayEvent applies a webhook outcome to the correlated
// installment. Unknown or already-settled correlations are acknowledged
// without change so the gateway stops retrying.
func (s *ChargeService) HandleGatewayEvent(event *gateway.ChargeEvent) error {
	if event.Type == gateway.ChargeIgnored {
		return nil
	}

	inst, err := s.instRepo.GetByGatewayChargeID(event.ChargeID)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) {
			log.Warn().Str("charge_id", event.ChargeID).Msg("Webhook for unknown charge, acknowledging")
			return nil
		}
		return err
	}

	// Tenancy comes from the plan row; webhooks carry no program context
	plan, err := s.planRepo.GetAnyByID(inst.PlanID)
	if err != nil {
		return err
	}

	switch event.Type {
	case gateway.ChargeSucceeded:
		if inst.IsPaid() {
			return nil
		}
		return s.applyChargeSuccess(inst, plan, event)
	case gateway.ChargeFailed:
		recordAudit(s.auditRepo, &domain.AuditEntry{
			ProgramID: plan.ProgramID,
			Entity:    "installment",
			EntityID:  inst.ID,
			Action:    domain.AuditGatewayFailed,
		})
		log.Warn().
			Int32("installment_id", inst.ID).
			Str("charge_id", event.ChargeID).
			Msg("Gateway charge failed")
		return nil
	}
	return nil
}

func (s *ChargeService) applyChargeSuccess(inst *domain.Installment, plan *domain.PaymentPlan, event *gateway.ChargeEvent) error {
	now := time.Now()
	method := event.Method
	updated, err := s.instRepo.SetPaid(inst.ID, now, &method, false, &event.ChargeID)
	if err != nil {
		return err
	}

	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: plan.ProgramID,
		Entity:    "installment",
		EntityID:  inst.ID,
		Action:    domain.AuditGatewayConfirmed,
	})

	installments, err := s.instRepo.GetByPlanID(plan.ID)
	if err != nil {
		return err
	}
	if allPaid(installments) && plan.Status == domain.PlanStatusActive {
		if completed, err := s.planRepo.UpdateStatus(plan.ID, domain.PlanStatusCompleted); err == nil {
			s.publishEvent(plan.ProgramID, websocket.PaymentPlanStatusChanged(completed))
		}
	}

	syncPayment(s.paymentRepo, plan, installments)

	s.publishEvent(plan.ProgramID, websocket.InstallmentMarkedPaid(updated))
	return nil
}
