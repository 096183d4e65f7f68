package service

import (
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// PaymentService serves the parent-facing payment aggregates: the
// deduplicated "current amount owed" list and per-parent summaries.
type PaymentService struct {
	paymentRepo    domain.PaymentRepository
	planRepo       domain.PaymentPlanRepository
	instRepo       domain.InstallmentRepository
	parentRepo     domain.ParentRepository
	eventPublisher websocket.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo domain.PaymentRepository, planRepo domain.PaymentPlanRepository, instRepo domain.InstallmentRepository, parentRepo domain.ParentRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		instRepo:    instRepo,
		parentRepo:  parentRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ListPayments returns at most one payment row per parent, collapsing
// historical duplicates down to the latest created.
func (s *PaymentService) ListPayments(programID int32) ([]*domain.Payment, error) {
	payments, err := s.paymentRepo.GetAllByProgram(programID)
	if err != nil {
		return nil, err
	}
	return domain.DedupeByParent(payments), nil
}

// InstallmentView is an installment decorated with the display payment
// method resolved across the plan's sources.
type InstallmentView struct {
	*domain.Installment
	ResolvedMethod string `json:"resolvedMethod"`
}

// ParentPaymentSummary is the per-parent drill-down: the authoritative
// plan among any duplicates, its installments, and derived progress.
type ParentPaymentSummary struct {
	Parent       *domain.Parent          `json:"parent"`
	Plan         *domain.PaymentPlan     `json:"plan,omitempty"`
	Installments []*InstallmentView      `json:"installments"`
	Progress     domain.ProgressSnapshot `json:"progress"`
}

// GetParentSummary builds a parent's payment summary. When a parent has
// duplicate plans the largest-total one is authoritative; every
// installment carries its reconciled payment method.
func (s *PaymentService) GetParentSummary(programID int32, parentID int32) (*ParentPaymentSummary, error) {
	parent, err := s.parentRepo.GetByID(programID, parentID)
	if err != nil {
		return nil, err
	}

	plans, err := s.planRepo.GetByParent(programID, parentID)
	if err != nil {
		return nil, err
	}

	summary := &ParentPaymentSummary{
		Parent:       parent,
		Installments: []*InstallmentView{},
	}

	plan := domain.AuthoritativePlan(plans)
	if plan == nil {
		return summary, nil
	}
	summary.Plan = plan

	installments, err := s.instRepo.GetByPlanID(plan.ID)
	if err != nil {
		return nil, err
	}

	var first *domain.Installment
	for _, inst := range installments {
		if inst.Number == 1 {
			first = inst
			break
		}
	}

	views := make([]*InstallmentView, 0, len(installments))
	for _, inst := range installments {
		views = append(views, &InstallmentView{
			Installment:    inst,
			ResolvedMethod: domain.ResolvePaymentMethod(inst, plan, first),
		})
	}

	summary.Installments = views
	summary.Progress = domain.ComputeProgress(plan, installments, time.Now())
	return summary, nil
}

// syncPayment re-derives a plan's parent-facing payment rows after an
// installment changes state, so the owed list and the reminder sweep
// track reality. Cancelled rows stay cancelled. Display-level
// bookkeeping: failures are logged, never surfaced to the caller.
func syncPayment(paymentRepo domain.PaymentRepository, plan *domain.PaymentPlan, installments []*domain.Installment) {
	payments, err := paymentRepo.GetByParent(plan.ProgramID, plan.ParentID)
	if err != nil {
		log.Warn().Err(err).Int32("plan_id", plan.ID).Msg("Failed to load payment rows for sync")
		return
	}

	for _, payment := range payments {
		if payment.PlanID != plan.ID || payment.Status == domain.PaymentStatusCancelled {
			continue
		}
		payment.DeriveFromInstallments(installments)
		if _, err := paymentRepo.Update(payment); err != nil {
			log.Warn().Err(err).Int32("payment_id", payment.ID).Msg("Failed to sync payment row")
		}
	}
}
