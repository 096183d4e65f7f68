package service

import (
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/websocket"
)

// InstallmentService handles manual mark/unmark of installments
type InstallmentService struct {
	instRepo       domain.InstallmentRepository
	planRepo       domain.PaymentPlanRepository
	paymentRepo    domain.PaymentRepository
	auditRepo      domain.AuditRepository
	eventPublisher websocket.EventPublisher
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(instRepo domain.InstallmentRepository, planRepo domain.PaymentPlanRepository, paymentRepo domain.PaymentRepository, auditRepo domain.AuditRepository) *InstallmentService {
	return &InstallmentService{
		instRepo:    instRepo,
		planRepo:    planRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *InstallmentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InstallmentService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// MarkPaidInput carries optional overrides for a manual mark
type MarkPaidInput struct {
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
}

// InstallmentResult pairs the updated installment with the plan's fresh
// progress snapshot so the dashboard can re-render without a refetch
type InstallmentResult struct {
	Installment *domain.Installment     `json:"installment"`
	Progress    domain.ProgressSnapshot `json:"progress"`
}

// getForProgram loads an installment and its plan, asserting the plan
// belongs to the program
func (s *InstallmentService) getForProgram(programID int32, installmentID int32) (*domain.Installment, *domain.PaymentPlan, error) {
	inst, err := s.instRepo.GetByID(installmentID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.planRepo.GetByID(programID, inst.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return inst, plan, nil
}

func (s *InstallmentService) snapshot(plan *domain.PaymentPlan) (domain.ProgressSnapshot, []*domain.Installment, error) {
	installments, err := s.instRepo.GetByPlanID(plan.ID)
	if err != nil {
		return domain.ProgressSnapshot{}, nil, err
	}
	return domain.ComputeProgress(plan, installments, time.Now()), installments, nil
}

// MarkPaid manually records an installment as paid.
//
// Gateway-confirmed payments cannot be overridden; marking an
// installment that is already manually paid is a no-op success and
// returns the current snapshot unchanged.
func (s *InstallmentService) MarkPaid(programID int32, installmentID int32, input MarkPaidInput) (*InstallmentResult, error) {
	inst, plan, err := s.getForProgram(programID, installmentID)
	if err != nil {
		return nil, err
	}

	if inst.IsGatewayPaid() {
		return nil, domain.ErrInstallmentGatewayPaid
	}
	if inst.IsPaid() {
		// Already manually paid; repeating the action changes nothing
		snap, _, err := s.snapshot(plan)
		if err != nil {
			return nil, err
		}
		return &InstallmentResult{Installment: inst, Progress: snap}, nil
	}

	paidAt := time.Now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	updated, err := s.instRepo.SetPaid(installmentID, paidAt, input.PaymentMethod, true, nil)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: programID,
		Entity:    "installment",
		EntityID:  installmentID,
		Action:    domain.AuditMarkedPaid,
	})

	snap, installments, err := s.snapshot(plan)
	if err != nil {
		return nil, err
	}

	// Paying the last open installment completes the plan
	if allPaid(installments) && plan.Status == domain.PlanStatusActive {
		if completed, err := s.planRepo.UpdateStatus(plan.ID, domain.PlanStatusCompleted); err == nil {
			s.publishEvent(programID, websocket.PaymentPlanStatusChanged(completed))
		}
	}

	syncPayment(s.paymentRepo, plan, installments)

	result := &InstallmentResult{Installment: updated, Progress: snap}
	s.publishEvent(programID, websocket.InstallmentMarkedPaid(result))
	return result, nil
}

// Revert undoes a manual mark, returning the installment to pending.
// Only manually marked installments can be reverted.
func (s *InstallmentService) Revert(programID int32, installmentID int32) (*InstallmentResult, error) {
	inst, plan, err := s.getForProgram(programID, installmentID)
	if err != nil {
		return nil, err
	}

	if inst.IsGatewayPaid() {
		return nil, domain.ErrInstallmentGatewayPaid
	}
	if !inst.IsPaid() || !inst.ManuallyMarked {
		return nil, domain.ErrInstallmentNotManual
	}

	updated, err := s.instRepo.SetPending(installmentID)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: programID,
		Entity:    "installment",
		EntityID:  installmentID,
		Action:    domain.AuditRevertedPending,
	})

	// A completed plan with a reopened installment is active again
	if plan.Status == domain.PlanStatusCompleted {
		if reopened, err := s.planRepo.UpdateStatus(plan.ID, domain.PlanStatusActive); err == nil {
			plan = reopened
			s.publishEvent(programID, websocket.PaymentPlanStatusChanged(reopened))
		}
	}

	snap, installments, err := s.snapshot(plan)
	if err != nil {
		return nil, err
	}

	syncPayment(s.paymentRepo, plan, installments)

	result := &InstallmentResult{Installment: updated, Progress: snap}
	s.publishEvent(programID, websocket.InstallmentReverted(result))
	return result, nil
}

// GetAuditTrail retrieves the audit history for an installment
func (s *InstallmentService) GetAuditTrail(programID int32, installmentID int32) ([]*domain.AuditEntry, error) {
	if _, _, err := s.getForProgram(programID, installmentID); err != nil {
		return nil, err
	}
	return s.auditRepo.GetByEntity(programID, "installment", installmentID)
}

func allPaid(installments []*domain.Installment) bool {
	for _, inst := range installments {
		if !inst.IsPaid() {
			return false
		}
	}
	return len(installments) > 0
}
