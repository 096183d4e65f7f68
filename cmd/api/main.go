package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/courtside-backend/internal/ai"
	"github.com/courtside/courtside-backend/internal/cache"
	"github.com/courtside/courtside-backend/internal/config"
	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/handler"
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/courtside/courtside-backend/internal/notify"
	"github.com/courtside/courtside-backend/internal/repository/postgres"
	"github.com/courtside/courtside-backend/internal/repository/storage"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
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

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Connect to Redis. The API degrades to uncached analytics if
	// Redis is down, so this is not fatal.
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, analytics caching disabled")
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
	teamRepo := postgres.NewTeamRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	docRepo, err := storage.NewS3DocumentRepository(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document storage")
	}

	// External providers
	stripeGateway := gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	emailSender := notify.NewEmailSender(cfg.SMTP)
	smsSender := notify.NewSMSSender(cfg.SMSBaseURL, cfg.SMSAPIKey)

	var drafter ai.Drafter = ai.TemplateDrafter{}
	if cfg.OpenAIAPIKey != "" {
		drafter = ai.NewOpenAIDrafter(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, using template drafts")
	}

	// Initialize services
	authService := service.NewAuthService(programRepo)
	parentService := service.NewParentService(parentRepo, planRepo, instRepo, auditRepo)
	planService := service.NewPlanService(planRepo, instRepo, paymentRepo, parentRepo)
	installmentService := service.NewInstallmentService(instRepo, planRepo, paymentRepo, auditRepo)
	paymentService := service.NewPaymentService(paymentRepo, planRepo, instRepo, parentRepo)
	chargeService := service.NewChargeService(stripeGateway, instRepo, planRepo, paymentRepo, parentRepo, auditRepo, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	teamService := service.NewTeamService(teamRepo, parentRepo, auditRepo)
	mediaService := service.NewMediaService(teamRepo, docRepo)
	analyticsService := service.NewAnalyticsService(planRepo, instRepo, parentRepo, teamRepo, redisCache)
	messageService := service.NewMessageService(parentRepo, programRepo, planRepo, instRepo, messageRepo, drafter, emailSender, smsSender)
	contractService := service.NewContractService(contractRepo, parentRepo, programRepo, docRepo, emailSender)

	// WebSocket hub. Every mutation event also invalidates the
	// program's cached analytics summary.
	hub := websocket.NewHub()
	publisher := service.NewInvalidatingPublisher(hub, analyticsService)
	parentService.SetEventPublisher(publisher)
	planService.SetEventPublisher(publisher)
	installmentService.SetEventPublisher(publisher)
	paymentService.SetEventPublisher(publisher)
	chargeService.SetEventPublisher(publisher)
	teamService.SetEventPublisher(publisher)
	contractService.SetEventPublisher(publisher)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Parent:      handler.NewParentHandler(parentService),
		Plan:        handler.NewPlanHandler(planService),
		Installment: handler.NewInstallmentHandler(installmentService, chargeService),
		Payment:     handler.NewPaymentHandler(paymentService),
		Team:        handler.NewTeamHandler(teamService, mediaService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
		Message:     handler.NewMessageHandler(messageService),
		Contract:    handler.NewContractHandler(contractService),
		Webhook:     handler.NewWebhookHandler(stripeGateway, chargeService),
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, middleware.RateLimitMiddleware(rateLimiter), handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
