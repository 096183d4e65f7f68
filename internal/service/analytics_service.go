package service

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/courtside-backend/internal/cache"
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const summaryCacheTTL = 60 * time.Second

// AnalyticsService computes program-wide rollups for the dashboard
type AnalyticsService struct {
	planRepo   domain.PaymentPlanRepository
	instRepo   domain.InstallmentRepository
	parentRepo domain.ParentRepository
	teamRepo   domain.TeamRepository
	cache      *cache.Cache
}

// NewAnalyticsService creates a new AnalyticsService. cache may be nil,
// in which case every call recomputes.
func NewAnalyticsService(planRepo domain.PaymentPlanRepository, instRepo domain.InstallmentRepository, parentRepo domain.ParentRepository, teamRepo domain.TeamRepository, c *cache.Cache) *AnalyticsService {
	return &AnalyticsService{
		planRepo:   planRepo,
		instRepo:   instRepo,
		parentRepo: parentRepo,
		teamRepo:   teamRepo,
		cache:      c,
	}
}

// Summary is the program-wide rollup shown on the dashboard home
type Summary struct {
	TotalParents      int32                 `json:"totalParents"`
	ActivePlans       int32                 `json:"activePlans"`
	CompletedPlans    int32                 `json:"completedPlans"`
	CollectedAmount   decimal.Decimal       `json:"collectedAmount"`
	OutstandingAmount decimal.Decimal       `json:"outstandingAmount"`
	OverdueAmount     decimal.Decimal       `json:"overdueAmount"`
	OverdueCount      int32                 `json:"overdueCount"`
	CompletionRate    decimal.Decimal       `json:"completionRate"`
	RosterCounts      []*domain.RosterCount `json:"rosterCounts"`
	GeneratedAt       time.Time             `json:"generatedAt"`
}

func summaryCacheKey(programID int32) string {
	return fmt.Sprintf("analytics:summary:%d", programID)
}

// GetSummary returns the cached rollup, recomputing after the TTL or
// after an explicit invalidation
func (s *AnalyticsService) GetSummary(ctx context.Context, programID int32) (*Summary, error) {
	if s.cache == nil {
		return s.computeSummary(programID)
	}
	return cache.GetOrSet(s.cache, ctx, summaryCacheKey(programID), summaryCacheTTL, func() (*Summary, error) {
		return s.computeSummary(programID)
	})
}

// Invalidate drops the cached summary so the next read recomputes.
// Called after mutations that move money or rosters.
func (s *AnalyticsService) Invalidate(ctx context.Context, programID int32) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(programID)); err != nil {
		log.Warn().Err(err).Int32("program_id", programID).Msg("Failed to invalidate analytics cache")
	}
}

// InvalidatingPublisher wraps an event publisher so every mutation event
// also drops the program's cached analytics summary. Mutations that move
// money or rosters all publish, so publishing doubles as the
// invalidation hook.
type InvalidatingPublisher struct {
	next      websocket.EventPublisher
	analytics *AnalyticsService
}

// NewInvalidatingPublisher decorates a publisher with cache invalidation
func NewInvalidatingPublisher(next websocket.EventPublisher, analytics *AnalyticsService) *InvalidatingPublisher {
	return &InvalidatingPublisher{next: next, analytics: analytics}
}

// Publish invalidates the cached summary, then forwards the event
func (p *InvalidatingPublisher) Publish(programID int32, event websocket.Event) {
	p.analytics.Invalidate(context.Background(), programID)
	if p.next != nil {
		p.next.Publish(programID, event)
	}
}

func (s *AnalyticsService) computeSummary(programID int32) (*Summary, error) {
	parents, err := s.parentRepo.GetAllByProgram(programID)
	if err != nil {
		return nil, err
	}
	plans, err := s.planRepo.GetAllByProgram(programID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &Summary{
		TotalParents:      int32(len(parents)),
		CollectedAmount:   decimal.Zero,
		OutstandingAmount: decimal.Zero,
		OverdueAmount:     decimal.Zero,
		CompletionRate:    decimal.Zero,
		GeneratedAt:       now,
	}

	for _, plan := range plans {
		switch plan.Status {
		case domain.PlanStatusActive:
			summary.ActivePlans++
		case domain.PlanStatusCompleted:
			summary.CompletedPlans++
		case domain.PlanStatusCancelled:
			continue
		}

		installments, err := s.instRepo.GetByPlanID(plan.ID)
		if err != nil {
			return nil, err
		}
		for _, inst := range installments {
			if inst.IsPaid() {
				summary.CollectedAmount = summary.CollectedAmount.Add(inst.Amount)
				continue
			}
			summary.OutstandingAmount = summary.OutstandingAmount.Add(inst.Amount)
			if inst.IsOverdue(now) {
				summary.OverdueAmount = summary.OverdueAmount.Add(inst.Amount)
				summary.OverdueCount++
			}
		}
	}

	if total := summary.ActivePlans + summary.CompletedPlans; total > 0 {
		summary.CompletionRate = decimal.NewFromInt32(summary.CompletedPlans).
			Div(decimal.NewFromInt32(total)).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	rosters, err := s.teamRepo.RosterCounts(programID)
	if err != nil {
		return nil, err
	}
	summary.RosterCounts = rosters

	return summary, nil
}
