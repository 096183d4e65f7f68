package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// centsPerUnit converts decimal currency amounts to gateway minor units.
var centsPerUnit = decimal.NewFromInt(100)

// CheckoutRequest describes the charge to collect for one installment.
type CheckoutRequest struct {
	InstallmentID int32
	Description   string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the gateway's hosted payment page reference. ID is
// stored on the installment as the gateway charge id so webhook events
// can be correlated back.
type CheckoutSession struct {
	ID  string
	URL string
}

// ChargeEventType is the normalized outcome of a gateway webhook event.
type ChargeEventType string

const (
	ChargeSucceeded ChargeEventType = "charge_succeeded"
	ChargeFailed    ChargeEventType = "charge_failed"
	ChargeIgnored   ChargeEventType = "charge_ignored"
)

// ChargeEvent is a gateway webhook event reduced to what the payment
// flow needs.
type ChargeEvent struct {
	Type     ChargeEventType
	ChargeID string
	Method   string
}

// PaymentGateway abstracts the card processor.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*ChargeEvent, error)
}
