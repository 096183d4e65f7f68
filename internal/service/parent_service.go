package service

import (
	"fmt"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/websocket"
)

// ParentService handles parent/guardian business logic
type ParentService struct {
	parentRepo     domain.ParentRepository
	planRepo       domain.PaymentPlanRepository
	instRepo       domain.InstallmentRepository
	auditRepo      domain.AuditRepository
	eventPublisher websocket.EventPublisher
}

// NewParentService creates a new ParentService
func NewParentService(parentRepo domain.ParentRepository, planRepo domain.PaymentPlanRepository, instRepo domain.InstallmentRepository, auditRepo domain.AuditRepository) *ParentService {
	return &ParentService{
		parentRepo: parentRepo,
		planRepo:   planRepo,
		instRepo:   instRepo,
		auditRepo:  auditRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ParentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ParentService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// CreateParent validates and creates a new parent record
func (s *ParentService) CreateParent(programID int32, parent *domain.Parent) (*domain.Parent, error) {
	parent.ProgramID = programID
	if err := parent.Validate(); err != nil {
		return nil, err
	}

	created, err := s.parentRepo.Create(parent)
	if err != nil {
		return nil, err
	}

	s.publishEvent(programID, websocket.ParentCreated(created))
	return created, nil
}

// GetParent retrieves a parent by ID
func (s *ParentService) GetParent(programID int32, id int32) (*domain.Parent, error) {
	return s.parentRepo.GetByID(programID, id)
}

// ListParents retrieves all live parents for a program
func (s *ParentService) ListParents(programID int32) ([]*domain.Parent, error) {
	return s.parentRepo.GetAllByProgram(programID)
}

// UpdateParent validates and updates a parent record
func (s *ParentService) UpdateParent(programID int32, parent *domain.Parent) (*domain.Parent, error) {
	parent.ProgramID = programID
	if err := parent.Validate(); err != nil {
		return nil, err
	}

	// Verify the parent exists in this program
	if _, err := s.parentRepo.GetByID(programID, parent.ID); err != nil {
		return nil, err
	}

	updated, err := s.parentRepo.Update(parent)
	if err != nil {
		return nil, err
	}

	s.publishEvent(programID, websocket.ParentUpdated(updated))
	return updated, nil
}

// DeleteParent soft-deletes a parent and audit-logs the scope of what
// the deletion touches (plans and installments stay for bookkeeping)
func (s *ParentService) DeleteParent(programID int32, id int32) error {
	parent, err := s.parentRepo.GetByID(programID, id)
	if err != nil {
		return err
	}

	plans, err := s.planRepo.GetByParent(programID, id)
	if err != nil {
		return err
	}
	installmentCount := 0
	for _, plan := range plans {
		installments, err := s.instRepo.GetByPlanID(plan.ID)
		if err != nil {
			continue
		}
		installmentCount += len(installments)
	}

	if err := s.parentRepo.SoftDelete(programID, id); err != nil {
		return err
	}

	detail := fmt.Sprintf("%s; %d plan(s), %d installment(s) retained", parent.FullName(), len(plans), installmentCount)
	recordAudit(s.auditRepo, &domain.AuditEntry{
		ProgramID: programID,
		Entity:    "parent",
		EntityID:  id,
		Action:    domain.AuditParentDeleted,
		Detail:    &detail,
	})

	s.publishEvent(programID, websocket.ParentDeleted(map[string]int32{"id": id}))
	return nil
}
