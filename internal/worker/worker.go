package worker

import (
	"context"
	"sync"
	"time"

	"github.com/courtside/courtside-backend/internal/cache"
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/rs/zerolog"
)

const leaderLockKey = "worker:leader"

// Worker is the background loop that keeps payment state honest: it
// persists the overdue status on installments past their due date and
// sends payment reminders for past-due payments.
type Worker struct {
	instRepo       domain.InstallmentRepository
	paymentRepo    domain.PaymentRepository
	parentRepo     domain.ParentRepository
	messageService *service.MessageService
	cache          *cache.Cache
	logger         zerolog.Logger
	interval       time.Duration
	maxReminders   int32
	stopCh         chan struct{}
	doneCh         chan struct{}
	mu             sync.Mutex
	running        bool
}

// Config holds configuration for the background worker
type Config struct {
	Interval     time.Duration // How often to run the sweep
	MaxReminders int32         // Stop nagging a parent after this many reminders
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Interval:     5 * time.Minute,
		MaxReminders: 3,
	}
}

// New creates a background worker. cache may be nil, in which case the
// leader lock is skipped and every instance sweeps.
func New(
	instRepo domain.InstallmentRepository,
	paymentRepo domain.PaymentRepository,
	parentRepo domain.ParentRepository,
	messageService *service.MessageService,
	c *cache.Cache,
	logger zerolog.Logger,
	config Config,
) *Worker {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.MaxReminders <= 0 {
		config.MaxReminders = 3
	}

	return &Worker{
		instRepo:       instRepo,
		paymentRepo:    paymentRepo,
		parentRepo:     parentRepo,
		messageService: messageService,
		cache:          c,
		logger:         logger.With().Str("component", "payment_worker").Logger(),
		interval:       config.Interval,
		maxReminders:   config.MaxReminders,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background sweep loop
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int32("max_reminders", w.maxReminders).
		Msg("Starting payment worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker. Safe to call more than once; only
// the first call closes the stop channel.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping payment worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Payment worker stopped")
}

// run is the main loop
func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one pass: acquire the leader lock, persist overdue
// installments, then send reminders for past-due payments.
func (w *Worker) sweep(ctx context.Context) {
	if !w.acquireLock(ctx) {
		w.logger.Debug().Msg("Another instance holds the leader lock, skipping sweep")
		return
	}

	startTime := time.Now()

	marked := w.sweepOverdue()
	sent, skipped, failed := w.sendReminders(ctx)

	w.logger.Info().
		Int64("marked_overdue", marked).
		Int("reminders_sent", sent).
		Int("reminders_skipped", skipped).
		Int("reminders_failed", failed).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed payment sweep")
}

// acquireLock takes the leader lock for slightly less than one interval
// so a crashed leader releases it before the next tick.
func (w *Worker) acquireLock(ctx context.Context) bool {
	if w.cache == nil {
		return true
	}

	expiry := w.interval - 30*time.Second
	if expiry <= 0 {
		expiry = w.interval
	}

	acquired, err := w.cache.SetNX(ctx, leaderLockKey, time.Now().Format(time.RFC3339), expiry)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Leader lock check failed, sweeping anyway")
		return true
	}
	return acquired
}

// sweepOverdue persists the overdue status on pending installments past
// their due date. Reads already classify these as overdue on the fly;
// persisting keeps direct queries and exports consistent.
func (w *Worker) sweepOverdue() int64 {
	marked, err := w.instRepo.MarkOverdueBefore(time.Now())
	if err != nil {
		w.logger.Error().Err(err).Msg("Overdue sweep failed")
		return 0
	}
	if marked > 0 {
		w.logger.Info().Int64("count", marked).Msg("Marked installments overdue")
	}
	return marked
}

// sendReminders drafts and sends a payment reminder for each past-due
// payment. A single send failure never aborts the batch.
func (w *Worker) sendReminders(ctx context.Context) (sent, skipped, failed int) {
	payments, err := w.paymentRepo.ListPastDue(time.Now())
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list past-due payments")
		return 0, 0, 0
	}

	for _, payment := range payments {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping reminder pass")
			return sent, skipped, failed
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping reminder pass")
			return sent, skipped, failed
		default:
		}

		if payment.RemindersSent >= w.maxReminders {
			skipped++
			continue
		}

		if err := w.remind(ctx, payment); err != nil {
			w.logger.Error().Err(err).
				Int32("program_id", payment.ProgramID).
				Int32("parent_id", payment.ParentID).
				Msg("Failed to send payment reminder")
			failed++
			continue
		}

		if err := w.paymentRepo.IncrementReminders(payment.ID); err != nil {
			w.logger.Error().Err(err).
				Int32("payment_id", payment.ID).
				Msg("Failed to record reminder count")
		}
		sent++
	}

	return sent, skipped, failed
}

func (w *Worker) remind(ctx context.Context, payment *domain.Payment) error {
	// Soft-deleted parents drop out here
	if _, err := w.parentRepo.GetByID(payment.ProgramID, payment.ParentID); err != nil {
		return err
	}

	draft, err := w.messageService.DraftMessage(ctx, payment.ProgramID, service.DraftInput{
		ParentID: payment.ParentID,
		Kind:     domain.KindPaymentReminder,
		Channel:  domain.ChannelEmail,
	})
	if err != nil {
		return err
	}

	_, err = w.messageService.SendMessage(payment.ProgramID, service.SendInput{
		ParentID:  payment.ParentID,
		Channel:   domain.ChannelEmail,
		Subject:   draft.Subject,
		Body:      draft.Body,
		AIDrafted: draft.AIDrafted,
	})
	return err
}

// IsRunning returns whether the worker is currently running
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
