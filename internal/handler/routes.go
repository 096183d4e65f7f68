package handler

import (
	"github.com/courtside/courtside-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers bundles the API handlers for route registration
type Handlers struct {
	Auth        *AuthHandler
	Parent      *ParentHandler
	Plan        *PlanHandler
	Installment *InstallmentHandler
	Payment     *PaymentHandler
	Team        *TeamHandler
	Analytics   *AnalyticsHandler
	Message     *MessageHandler
	Contract    *ContractHandler
	Webhook     *WebhookHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter echo.MiddlewareFunc, h Handlers) {
	api := e.Group("/api/v1")

	// Webhooks authenticate by signature, not JWT
	webhooks := api.Group("/webhooks")
	webhooks.POST("/stripe", h.Webhook.HandleStripe)

	// Onboarding callback needs a valid token but not yet a program
	api.POST("/auth/callback", h.Auth.Callback, authMiddleware.AuthenticateToken())

	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		protected.Use(rateLimiter)
	}

	protected.GET("/auth/me", h.Auth.Me)

	// Parents
	protected.POST("/parents", h.Parent.CreateParent)
	protected.GET("/parents", h.Parent.GetParents)
	protected.GET("/parents/:id", h.Parent.GetParent)
	protected.PUT("/parents/:id", h.Parent.UpdateParent)
	protected.DELETE("/parents/:id", h.Parent.DeleteParent)
	protected.GET("/parents/:id/plans", h.Plan.GetParentPlans)
	protected.GET("/parents/:id/payments", h.Payment.GetParentSummary)
	protected.GET("/parents/:id/messages", h.Message.GetHistory)
	protected.GET("/parents/:id/contracts", h.Contract.GetParentContracts)

	// Payment plans
	protected.POST("/plans", h.Plan.CreatePlan)
	protected.GET("/plans", h.Plan.GetPlans)
	protected.GET("/plans/:id", h.Plan.GetPlan)
	protected.POST("/plans/:id/cancel", h.Plan.CancelPlan)

	// Installments
	protected.POST("/installments/:id/mark-paid", h.Installment.MarkPaid)
	protected.POST("/installments/:id/revert", h.Installment.Revert)
	protected.GET("/installments/:id/audit", h.Installment.GetAuditTrail)
	protected.POST("/installments/:id/charge", h.Installment.Charge)

	// Payments (parent-facing aggregates)
	protected.GET("/payments", h.Payment.GetPayments)

	// Teams and rosters
	protected.POST("/teams", h.Team.CreateTeam)
	protected.GET("/teams", h.Team.GetTeams)
	protected.GET("/teams/:id", h.Team.GetTeam)
	protected.PUT("/teams/:id", h.Team.UpdateTeam)
	protected.DELETE("/teams/:id", h.Team.DeleteTeam)
	protected.GET("/teams/:id/roster", h.Team.GetRoster)
	protected.POST("/teams/:id/logo", h.Team.UploadLogo)
	protected.GET("/teams/:id/logo", h.Team.GetLogoURL)
	protected.POST("/teams/assignments", h.Team.Assign)
	protected.DELETE("/teams/assignments/:parentId", h.Team.Unassign)
	protected.POST("/teams/bulk-reassign", h.Team.BulkReassign)
	protected.POST("/teams/bulk-reassign/undo", h.Team.UndoBulkReassign)

	// Analytics
	protected.GET("/analytics/summary", h.Analytics.GetSummary)

	// Communications
	protected.POST("/messages/draft", h.Message.Draft)
	protected.POST("/messages/send", h.Message.Send)

	// Contracts
	protected.POST("/contracts", h.Contract.Upload)
	protected.GET("/contracts/:id", h.Contract.GetContract)
	protected.GET("/contracts/:id/document", h.Contract.GetDocumentURL)
	protected.POST("/contracts/:id/send", h.Contract.Send)
	protected.POST("/contracts/:id/sign", h.Contract.MarkSigned)
	protected.POST("/contracts/:id/void", h.Contract.Void)

	// Real-time updates
	e.GET("/ws", h.WebSocket.HandleWS)
}
