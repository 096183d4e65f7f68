package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements PaymentGateway using Stripe Checkout
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the global Stripe client
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

// CreateCheckoutSession creates a one-time Stripe Checkout session for an
// installment charge
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					// Stripe amounts are in the smallest currency unit
					UnitAmount: stripe.Int64(req.Amount.Mul(centsPerUnit).IntPart()),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", req.InstallmentID)),
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	log.Info().
		Str("session_id", s.ID).
		Int32("installment_id", req.InstallmentID).
		Msg("Stripe checkout session created")

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseWebhook verifies the event signature and normalizes the event.
// Unrecognized event types map to ChargeIgnored, not an error: Stripe
// sends many event types we never subscribed to semantically.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*ChargeEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session: %w", err)
		}
		// Completed sessions with delayed payment methods settle later
		// via async_payment_succeeded; skip the unpaid completion.
		if event.Type == stripe.EventTypeCheckoutSessionCompleted &&
			session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			return &ChargeEvent{Type: ChargeIgnored, ChargeID: session.ID}, nil
		}
		return &ChargeEvent{Type: ChargeSucceeded, ChargeID: session.ID, Method: "stripe_card"}, nil

	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return &ChargeEvent{Type: ChargeFailed, ChargeID: session.ID}, nil

	default:
		log.Debug().Str("type", string(event.Type)).Msg("ignoring unhandled webhook event")
		return &ChargeEvent{Type: ChargeIgnored}, nil
	}
}
