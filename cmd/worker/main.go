package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtside/courtside-backend/internal/ai"
	"github.com/courtside/courtside-backend/internal/cache"
	"github.com/courtside/courtside-backend/internal/config"
	"github.com/courtside/courtside-backend/internal/notify"
	"github.com/courtside/courtside-backend/internal/repository/postgres"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/courtside/courtside-backend/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Connect to Redis for the leader lock. Without it every worker
	// instance sweeps, which is safe but wasteful.
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without leader lock")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Initialize repositories
	programRepo := postgres.NewProgramRepository(pool)
	parentRepo := postgres.NewParentRepository(pool)
	planRepo := postgres.NewPaymentPlanRepository(pool)
	instRepo := postgres.NewInstallmentRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)

	// Outbound providers
	emailSender := notify.NewEmailSender(cfg.SMTP)
	smsSender := notify.NewSMSSender(cfg.SMSBaseURL, cfg.SMSAPIKey)

	var drafter ai.Drafter = ai.TemplateDrafter{}
	if cfg.OpenAIAPIKey != "" {
		drafter = ai.NewOpenAIDrafter(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	messageService := service.NewMessageService(parentRepo, programRepo, planRepo, instRepo, messageRepo, drafter, emailSender, smsSender)

	w := worker.New(instRepo, paymentRepo, parentRepo, messageService, redisCache, log.Logger, worker.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	w.Stop()
	log.Info().Msg("Worker exited")
}
