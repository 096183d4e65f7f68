package service

import (
	"context"
	"time"

	"github.com/courtside/courtside-backend/internal/ai"
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EmailSender delivers an email message
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender delivers a text message
type SMSSender interface {
	Send(phone, text string) error
}

// MessageService drafts and sends parent communications
type MessageService struct {
	parentRepo  domain.ParentRepository
	programRepo domain.ProgramRepository
	planRepo    domain.PaymentPlanRepository
	instRepo    domain.InstallmentRepository
	messageRepo domain.MessageRepository
	drafter     ai.Drafter
	email       EmailSender
	sms         SMSSender
}

// NewMessageService creates a new MessageService
func NewMessageService(parentRepo domain.ParentRepository, programRepo domain.ProgramRepository, planRepo domain.PaymentPlanRepository, instRepo domain.InstallmentRepository, messageRepo domain.MessageRepository, drafter ai.Drafter, email EmailSender, sms SMSSender) *MessageService {
	return &MessageService{
		parentRepo:  parentRepo,
		programRepo: programRepo,
		planRepo:    planRepo,
		instRepo:    instRepo,
		messageRepo: messageRepo,
		drafter:     drafter,
		email:       email,
		sms:         sms,
	}
}

// DraftInput selects the message kind and channel for a parent
type DraftInput struct {
	ParentID    int32                 `json:"parentId"`
	Kind        domain.MessageKind    `json:"kind"`
	Channel     domain.MessageChannel `json:"channel"`
	Instruction string                `json:"instruction,omitempty"`
}

// DraftMessage generates a message draft for admin review. Reminder
// drafts include the parent's outstanding amount from the authoritative
// plan.
func (s *MessageService) DraftMessage(ctx context.Context, programID int32, input DraftInput) (*ai.Draft, error) {
	parent, err := s.parentRepo.GetByID(programID, input.ParentID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(programID)
	if err != nil {
		return nil, err
	}

	req := ai.DraftRequest{
		Kind:        input.Kind,
		Channel:     input.Channel,
		ParentName:  parent.FullName(),
		ProgramName: program.Name,
		Instruction: input.Instruction,
	}
	if parent.PlayerName != nil {
		req.PlayerName = *parent.PlayerName
	}
	if input.Kind == domain.KindPaymentReminder {
		req.AmountDue = s.outstandingAmount(programID, input.ParentID)
	}

	return s.drafter.Draft(ctx, req)
}

// outstandingAmount sums the unpaid installments of the parent's
// authoritative plan. Best-effort: lookup failures yield zero.
func (s *MessageService) outstandingAmount(programID int32, parentID int32) decimal.Decimal {
	plans, err := s.planRepo.GetByParent(programID, parentID)
	if err != nil {
		return decimal.Zero
	}
	plan := domain.AuthoritativePlan(plans)
	if plan == nil {
		return decimal.Zero
	}
	installments, err := s.instRepo.GetByPlanID(plan.ID)
	if err != nil {
		return decimal.Zero
	}

	due := decimal.Zero
	for _, inst := range installments {
		if inst.IsUnpaid() {
			due = due.Add(inst.Amount)
		}
	}
	return due
}

// SendInput is a reviewed message ready to go out
type SendInput struct {
	ParentID  int32                 `json:"parentId"`
	Channel   domain.MessageChannel `json:"channel"`
	Subject   string                `json:"subject,omitempty"`
	Body      string                `json:"body"`
	AIDrafted bool                  `json:"aiDrafted"`
}

// SendMessage dispatches a message over the chosen channel and logs the
// outcome. The log row is written whether the send succeeds or fails.
func (s *MessageService) SendMessage(programID int32, input SendInput) (*domain.MessageLog, error) {
	parent, err := s.parentRepo.GetByID(programID, input.ParentID)
	if err != nil {
		return nil, err
	}

	msg := &domain.MessageLog{
		ProgramID: programID,
		ParentID:  input.ParentID,
		Channel:   input.Channel,
		Body:      input.Body,
		Status:    domain.MessageStatusSent,
		AIDrafted: input.AIDrafted,
		CreatedAt: time.Now(),
	}
	if input.Subject != "" {
		msg.Subject = &input.Subject
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if sendErr := s.dispatch(parent, input); sendErr != nil {
		msg.Status = domain.MessageStatusFailed
		log.Error().Err(sendErr).
			Int32("program_id", programID).
			Int32("parent_id", input.ParentID).
			Str("channel", string(input.Channel)).
			Msg("Failed to send message")
	}

	logged, err := s.messageRepo.Create(msg)
	if err != nil {
		return nil, err
	}
	return logged, nil
}

func (s *MessageService) dispatch(parent *domain.Parent, input SendInput) error {
	switch input.Channel {
	case domain.ChannelSMS:
		if parent.Phone == nil || *parent.Phone == "" {
			return domain.ErrMessageChannelInvalid
		}
		return s.sms.Send(*parent.Phone, input.Body)
	default:
		return s.email.Send(parent.Email, input.Subject, input.Body)
	}
}

// GetHistory retrieves the message log for a parent, newest first
func (s *MessageService) GetHistory(programID int32, parentID int32) ([]*domain.MessageLog, error) {
	if _, err := s.parentRepo.GetByID(programID, parentID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByParent(programID, parentID)
}
