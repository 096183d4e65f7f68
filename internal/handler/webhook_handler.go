package handler

import (
	"io"
	"net/http"

	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// maxWebhookBodyBytes bounds webhook payload reads.
const maxWebhookBodyBytes = 64 << 10

// WebhookHandler receives payment gateway callbacks. It sits outside the
// authenticated API group: the signature check is the authentication.
type WebhookHandler struct {
	gateway       gateway.PaymentGateway
	chargeService *service.ChargeService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(gw gateway.PaymentGateway, chargeService *service.ChargeService) *WebhookHandler {
	return &WebhookHandler{
		gateway:       gw,
		chargeService: chargeService,
	}
}

// HandleStripe handles POST /api/v1/webhooks/stripe
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read webhook payload")
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := h.gateway.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook with invalid signature")
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.chargeService.HandleGatewayEvent(event); err != nil {
		// Non-2xx makes the gateway retry with backoff
		log.Error().Err(err).Str("charge_id", event.ChargeID).Msg("Failed to apply gateway event")
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
