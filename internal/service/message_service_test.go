package service

import (
	"context"
	"testing"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	svc         *MessageService
	parentRepo  *testutil.MockParentRepository
	programRepo *testutil.MockProgramRepository
	planRepo    *testutil.MockPaymentPlanRepository
	instRepo    *testutil.MockInstallmentRepository
	messageRepo *testutil.MockMessageRepository
	drafter     *testutil.MockDrafter
	email       *testutil.MockEmailSender
	sms         *testutil.MockSMSSender
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		parentRepo:  testutil.NewMockParentRepository(),
		programRepo: testutil.NewMockProgramRepository(),
		planRepo:    testutil.NewMockPaymentPlanRepository(),
		instRepo:    testutil.NewMockInstallmentRepository(),
		messageRepo: testutil.NewMockMessageRepository(),
		drafter:     &testutil.MockDrafter{},
		email:       &testutil.MockEmailSender{},
		sms:         &testutil.MockSMSSender{},
	}
	f.svc = NewMessageService(f.parentRepo, f.programRepo, f.planRepo, f.instRepo, f.messageRepo, f.drafter, f.email, f.sms)

	f.programRepo.AddProgram(&domain.Program{ID: 1, Name: "Courtside Hoops"}, "")
	phone := "(555) 123-4567"
	player := "Alex"
	f.parentRepo.AddParent(&domain.Parent{
		ID: 10, ProgramID: 1,
		FirstName: "Dana", LastName: "Lee",
		Email: "dana@example.com", Phone: &phone, PlayerName: &player,
	})
	return f
}

func TestDraftMessage_ReminderIncludesOutstanding(t *testing.T) {
	f := newMessageFixture()
	f.planRepo.AddPlan(&domain.PaymentPlan{
		ID: 1, ProgramID: 1, ParentID: 10,
		TotalAmount: decimal.NewFromInt(300),
		Status:      domain.PlanStatusActive,
	})
	f.instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount: decimal.NewFromInt(100), Status: domain.InstallmentStatusPaid,
	})
	f.instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 1, Number: 2,
		Amount: decimal.NewFromInt(100), Status: domain.InstallmentStatusPending,
	})
	f.instRepo.AddInstallment(&domain.Installment{
		ID: 3, PlanID: 1, Number: 3,
		Amount: decimal.NewFromInt(100), Status: domain.InstallmentStatusOverdue,
	})

	draft, err := f.svc.DraftMessage(context.Background(), 1, DraftInput{
		ParentID: 10,
		Kind:     domain.KindPaymentReminder,
		Channel:  domain.ChannelEmail,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, draft.Subject)
	assert.NotEmpty(t, draft.Body)

	require.Len(t, f.drafter.Requests, 1)
	req := f.drafter.Requests[0]
	assert.Equal(t, "Dana Lee", req.ParentName)
	assert.Equal(t, "Courtside Hoops", req.ProgramName)
	assert.Equal(t, "Alex", req.PlayerName)
	assert.True(t, req.AmountDue.Equal(decimal.NewFromInt(200)), "unpaid installments only")
}

func TestDraftMessage_ParentNotFound(t *testing.T) {
	f := newMessageFixture()
	_, err := f.svc.DraftMessage(context.Background(), 1, DraftInput{ParentID: 99, Kind: domain.KindGeneral, Channel: domain.ChannelEmail})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
}

func TestSendMessage_EmailLogsSent(t *testing.T) {
	f := newMessageFixture()

	logged, err := f.svc.SendMessage(1, SendInput{
		ParentID: 10,
		Channel:  domain.ChannelEmail,
		Subject:  "Welcome!",
		Body:     "Hi Dana, welcome aboard.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MessageStatusSent, logged.Status)
	require.Len(t, f.email.Sent, 1)
	assert.Equal(t, "dana@example.com", f.email.Sent[0].To)
	assert.Empty(t, f.sms.Sent)
}

func TestSendMessage_SMSUsesPhone(t *testing.T) {
	f := newMessageFixture()

	logged, err := f.svc.SendMessage(1, SendInput{
		ParentID: 10,
		Channel:  domain.ChannelSMS,
		Body:     "Practice moved to 6pm.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MessageStatusSent, logged.Status)
	require.Len(t, f.sms.Sent, 1)
	assert.Equal(t, "(555) 123-4567", f.sms.Sent[0].Phone)
	assert.Empty(t, f.email.Sent)
}

func TestSendMessage_FailureStillLogged(t *testing.T) {
	f := newMessageFixture()
	f.email.SendErr = assert.AnError

	logged, err := f.svc.SendMessage(1, SendInput{
		ParentID: 10,
		Channel:  domain.ChannelEmail,
		Subject:  "Reminder",
		Body:     "Payment due.",
	})
	require.NoError(t, err, "a send failure is recorded, not surfaced as an operation error")
	assert.Equal(t, domain.MessageStatusFailed, logged.Status)
	require.Len(t, f.messageRepo.Messages, 1)
	assert.Equal(t, domain.MessageStatusFailed, f.messageRepo.Messages[0].Status)
}

func TestSendMessage_EmptyBodyRejected(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.SendMessage(1, SendInput{
		ParentID: 10,
		Channel:  domain.ChannelEmail,
		Body:     "",
	})
	assert.ErrorIs(t, err, domain.ErrMessageBodyEmpty)
	assert.Empty(t, f.email.Sent)
}

func TestSendMessage_SMSWithoutPhoneFails(t *testing.T) {
	f := newMessageFixture()
	f.parentRepo.AddParent(&domain.Parent{
		ID: 11, ProgramID: 1,
		FirstName: "No", LastName: "Phone",
		Email: "nophone@example.com",
	})

	logged, err := f.svc.SendMessage(1, SendInput{
		ParentID: 11,
		Channel:  domain.ChannelSMS,
		Body:     "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusFailed, logged.Status)
	assert.Empty(t, f.sms.Sent)
}
