package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workerFixture struct {
	worker      *Worker
	instRepo    *testutil.MockInstallmentRepository
	paymentRepo *testutil.MockPaymentRepository
	parentRepo  *testutil.MockParentRepository
	messageRepo *testutil.MockMessageRepository
	email       *testutil.MockEmailSender
	drafter     *testutil.MockDrafter
}

func newWorkerFixture() *workerFixture {
	instRepo := testutil.NewMockInstallmentRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	parentRepo := testutil.NewMockParentRepository()
	programRepo := testutil.NewMockProgramRepository()
	planRepo := testutil.NewMockPaymentPlanRepository()
	messageRepo := testutil.NewMockMessageRepository()
	email := &testutil.MockEmailSender{}
	sms := &testutil.MockSMSSender{}
	drafter := &testutil.MockDrafter{}

	programRepo.AddProgram(&domain.Program{ID: 1, Name: "Westside Hoops"}, "auth0|admin")
	parentRepo.AddParent(&domain.Parent{
		ID: 10, ProgramID: 1,
		FirstName: "Dana", LastName: "Reyes",
		Email: "dana@example.com",
	})

	messageService := service.NewMessageService(parentRepo, programRepo, planRepo, instRepo, messageRepo, drafter, email, sms)

	w := New(instRepo, paymentRepo, parentRepo, messageService, nil, zerolog.Nop(), Config{
		Interval:     5 * time.Minute,
		MaxReminders: 3,
	})

	return &workerFixture{
		worker:      w,
		instRepo:    instRepo,
		paymentRepo: paymentRepo,
		parentRepo:  parentRepo,
		messageRepo: messageRepo,
		email:       email,
		drafter:     drafter,
	}
}

func pastDuePayment(id int32, parentID int32, reminders int32) *domain.Payment {
	due := time.Now().AddDate(0, 0, -5)
	return &domain.Payment{
		ID: id, ProgramID: 1, ParentID: parentID, PlanID: 1,
		Amount:        decimal.NewFromInt(100),
		Status:        domain.PaymentStatusPending,
		DueDate:       &due,
		RemindersSent: reminders,
		CreatedAt:     time.Now().AddDate(0, -1, 0),
	}
}

func TestSweep_MarksOverdueInstallments(t *testing.T) {
	f := newWorkerFixture()

	past := time.Now().AddDate(0, 0, -3)
	future := time.Now().AddDate(0, 0, 3)
	f.instRepo.AddInstallment(&domain.Installment{
		ID: 1, PlanID: 1, Number: 1,
		Amount:  decimal.NewFromInt(100),
		Status:  domain.InstallmentStatusPending,
		DueDate: past,
	})
	f.instRepo.AddInstallment(&domain.Installment{
		ID: 2, PlanID: 1, Number: 2,
		Amount:  decimal.NewFromInt(100),
		Status:  domain.InstallmentStatusPending,
		DueDate: future,
	})

	f.worker.sweep(context.Background())

	overdue, err := f.instRepo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentStatusOverdue, overdue.Status)

	pending, err := f.instRepo.GetByID(2)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentStatusPending, pending.Status)
}

func TestSweep_SendsReminderAndIncrementsCount(t *testing.T) {
	f := newWorkerFixture()
	f.paymentRepo.AddPayment(pastDuePayment(1, 10, 0))

	f.worker.sweep(context.Background())

	require.Len(t, f.email.Sent, 1)
	assert.Equal(t, "dana@example.com", f.email.Sent[0].To)
	assert.Contains(t, f.email.Sent[0].Subject, "Payment reminder")

	require.Len(t, f.drafter.Requests, 1)
	assert.Equal(t, domain.KindPaymentReminder, f.drafter.Requests[0].Kind)

	payment, err := f.paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), payment.RemindersSent)
}

func TestSweep_SkipsExhaustedReminders(t *testing.T) {
	f := newWorkerFixture()
	f.paymentRepo.AddPayment(pastDuePayment(1, 10, 3))

	f.worker.sweep(context.Background())

	assert.Empty(t, f.email.Sent)

	payment, err := f.paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), payment.RemindersSent)
}

func TestSweep_DeletedParentDoesNotAbortBatch(t *testing.T) {
	f := newWorkerFixture()
	f.parentRepo.AddParent(&domain.Parent{
		ID: 11, ProgramID: 1,
		FirstName: "Sam", LastName: "Okafor",
		Email: "sam@example.com",
	})
	require.NoError(t, f.parentRepo.SoftDelete(1, 11))

	f.paymentRepo.AddPayment(pastDuePayment(1, 11, 0))
	f.paymentRepo.AddPayment(pastDuePayment(2, 10, 0))

	f.worker.sweep(context.Background())

	// The deleted parent fails, the next one still gets a reminder
	require.Len(t, f.email.Sent, 1)
	assert.Equal(t, "dana@example.com", f.email.Sent[0].To)

	skippedPayment, err := f.paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), skippedPayment.RemindersSent)
}

func TestSweep_ReminderFailureStillLogsMessage(t *testing.T) {
	f := newWorkerFixture()
	f.email.SendErr = assert.AnError
	f.paymentRepo.AddPayment(pastDuePayment(1, 10, 0))

	f.worker.sweep(context.Background())

	// Send failures produce a failed message log, not an error,
	// so the reminder still counts as attempted
	require.Len(t, f.messageRepo.Messages, 1)
	assert.Equal(t, domain.MessageStatusFailed, f.messageRepo.Messages[0].Status)

	payment, err := f.paymentRepo.GetByID(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), payment.RemindersSent)
}

func TestWorker_StartStop(t *testing.T) {
	f := newWorkerFixture()

	f.worker.Start(context.Background())
	assert.True(t, f.worker.IsRunning())

	f.worker.Stop()
	assert.False(t, f.worker.IsRunning())
}

func TestWorker_StopTwiceIsSafe(t *testing.T) {
	f := newWorkerFixture()

	f.worker.Start(context.Background())
	require.True(t, f.worker.IsRunning())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.worker.Stop()
		}()
	}
	wg.Wait()

	f.worker.Stop()
	assert.False(t, f.worker.IsRunning())
}
