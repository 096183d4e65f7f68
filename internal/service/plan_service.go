package service

import (
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/util"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PlanService handles payment plan business logic
type PlanService struct {
	planRepo       domain.PaymentPlanRepository
	instRepo       domain.InstallmentRepository
	paymentRepo    domain.PaymentRepository
	parentRepo     domain.ParentRepository
	eventPublisher websocket.EventPublisher
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo domain.PaymentPlanRepository, instRepo domain.InstallmentRepository, paymentRepo domain.PaymentRepository, parentRepo domain.ParentRepository) *PlanService {
	return &PlanService{
		planRepo:    planRepo,
		instRepo:    instRepo,
		paymentRepo: paymentRepo,
		parentRepo:  parentRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PlanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PlanService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// CreatePlanInput carries the fields needed to set up a payment plan
type CreatePlanInput struct {
	ParentID          int32           `json:"parentId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	InstallmentCount  int32           `json:"installmentCount"`
	Type              domain.PlanType `json:"type"`
	StartDate         time.Time       `json:"startDate"`
	PaymentMethod     *string         `json:"paymentMethod,omitempty"`
}

// PlanDetail bundles a plan with its installments and derived progress
type PlanDetail struct {
	Plan         *domain.PaymentPlan     `json:"plan"`
	Installments []*domain.Installment   `json:"installments"`
	Progress     domain.ProgressSnapshot `json:"progress"`
}

// CreatePlan validates input, creates the plan with its installment
// schedule, auto-marks the first installment paid (collected at signup),
// and creates the parent-facing payment aggregate row.
func (s *PlanService) CreatePlan(programID int32, input CreatePlanInput) (*PlanDetail, error) {
	// 1. Verify parent belongs to program
	if _, err := s.parentRepo.GetByID(programID, input.ParentID); err != nil {
		return nil, err
	}

	// 2. One-time plans collapse to a single installment
	count := input.InstallmentCount
	installmentAmount := input.InstallmentAmount
	if input.Type == domain.PlanTypeOneTime {
		count = 1
		installmentAmount = input.TotalAmount
	}

	plan := &domain.PaymentPlan{
		ProgramID:         programID,
		ParentID:          input.ParentID,
		TotalAmount:       input.TotalAmount,
		InstallmentAmount: installmentAmount,
		InstallmentCount:  count,
		Type:              input.Type,
		StartDate:         input.StartDate,
		Status:            domain.PlanStatusActive,
		PaymentMethod:     input.PaymentMethod,
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	created, err := s.planRepo.Create(plan)
	if err != nil {
		return nil, err
	}

	// 3. Generate the schedule; the first installment is paid up front
	// when the plan is signed
	now := time.Now()
	dueDates := util.DueDates(created.StartDate, string(created.Type), int(count))
	installments := make([]*domain.Installment, 0, count)
	for i, due := range dueDates {
		inst := &domain.Installment{
			PlanID:  created.ID,
			Number:  int32(i + 1),
			Amount:  installmentAmount,
			DueDate: due,
			Status:  domain.InstallmentStatusPending,
		}
		if i == 0 {
			inst.Status = domain.InstallmentStatusPaid
			inst.PaidAt = &now
			inst.PaymentMethod = created.PaymentMethod
			inst.ManuallyMarked = true
		}
		installments = append(installments, inst)
	}
	if err := s.instRepo.CreateBatch(installments); err != nil {
		return nil, err
	}

	// 4. One-time plans are complete the moment the single installment
	// is collected
	if count == 1 {
		created, err = s.planRepo.UpdateStatus(created.ID, domain.PlanStatusCompleted)
		if err != nil {
			return nil, err
		}
	}

	// 5. Create the parent-facing payment aggregate row
	payment := &domain.Payment{
		ProgramID: programID,
		ParentID:  input.ParentID,
		PlanID:    created.ID,
		Amount:    installmentAmount,
		Status:    domain.PaymentStatusPending,
	}
	if count == 1 {
		payment.Status = domain.PaymentStatusPaid
	} else {
		next := dueDates[1]
		payment.DueDate = &next
	}
	if _, err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	detail := &PlanDetail{
		Plan:         created,
		Installments: installments,
		Progress:     domain.ComputeProgress(created, installments, now),
	}

	s.publishEvent(programID, websocket.PaymentPlanCreated(detail))
	return detail, nil
}

// GetPlan retrieves a plan with its installments and progress
func (s *PlanService) GetPlan(programID int32, id int32) (*PlanDetail, error) {
	plan, err := s.planRepo.GetByID(programID, id)
	if err != nil {
		return nil, err
	}
	installments, err := s.instRepo.GetByPlanID(plan.ID)
	if err != nil {
		return nil, err
	}
	return &PlanDetail{
		Plan:         plan,
		Installments: installments,
		Progress:     domain.ComputeProgress(plan, installments, time.Now()),
	}, nil
}

// ListPlans retrieves all plans for a program with derived progress
func (s *PlanService) ListPlans(programID int32) ([]*PlanDetail, error) {
	plans, err := s.planRepo.GetAllByProgram(programID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	details := make([]*PlanDetail, 0, len(plans))
	for _, plan := range plans {
		installments, err := s.instRepo.GetByPlanID(plan.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &PlanDetail{
			Plan:         plan,
			Installments: installments,
			Progress:     domain.ComputeProgress(plan, installments, now),
		})
	}
	return details, nil
}

// GetParentPlans retrieves a parent's plans with derived progress
func (s *PlanService) GetParentPlans(programID int32, parentID int32) ([]*PlanDetail, error) {
	if _, err := s.parentRepo.GetByID(programID, parentID); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.GetByParent(programID, parentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	details := make([]*PlanDetail, 0, len(plans))
	for _, plan := range plans {
		installments, err := s.instRepo.GetByPlanID(plan.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &PlanDetail{
			Plan:         plan,
			Installments: installments,
			Progress:     domain.ComputeProgress(plan, installments, now),
		})
	}
	return details, nil
}

// CancelPlan transitions a plan to cancelled
func (s *PlanService) CancelPlan(programID int32, id int32) (*domain.PaymentPlan, error) {
	plan, err := s.planRepo.GetByID(programID, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == domain.PlanStatusCompleted || plan.Status == domain.PlanStatusCancelled {
		return nil, domain.ErrPlanNotActive
	}

	updated, err := s.planRepo.UpdateStatus(id, domain.PlanStatusCancelled)
	if err != nil {
		return nil, err
	}

	// Void the parent-facing payment row so the reminder sweep stops
	// picking it up. Best-effort.
	payments, err := s.paymentRepo.GetByParent(programID, plan.ParentID)
	if err == nil {
		for _, payment := range payments {
			if payment.PlanID != id || payment.Status == domain.PaymentStatusPaid {
				continue
			}
			if _, err := s.paymentRepo.UpdateStatus(payment.ID, domain.PaymentStatusCancelled); err != nil {
				log.Warn().Err(err).Int32("payment_id", payment.ID).Msg("Failed to cancel payment row")
			}
		}
	}

	s.publishEvent(programID, websocket.PaymentPlanStatusChanged(updated))
	return updated, nil
}
