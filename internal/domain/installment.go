package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInstallmentNotFound       = errors.New("installment not found")
	ErrInstallmentNumberInvalid  = errors.New("installment number must be at least 1")
	ErrInstallmentAmountInvalid  = errors.New("installment amount must be positive")
	ErrInstallmentPlanIDRequired = errors.New("plan ID is required")
	ErrInstallmentGatewayPaid    = errors.New("installment was paid through the payment gateway and cannot be modified manually")
	ErrInstallmentNotManual      = errors.New("installment was not manually marked and cannot be reverted")
)

// InstallmentStatus is the stored status of an installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// Installment is one scheduled charge within a payment plan.
// ManuallyMarked distinguishes an admin-asserted payment from a
// gateway-confirmed one; only manual marks may be reverted.
type Installment struct {
	ID              int32             `json:"id"`
	PlanID          int32             `json:"planId"`
	Number          int32             `json:"number"`
	Amount          decimal.Decimal   `json:"amount"`
	DueDate         time.Time         `json:"dueDate"`
	Status          InstallmentStatus `json:"status"`
	PaidAt          *time.Time        `json:"paidAt,omitempty"`
	PaymentMethod   *string           `json:"paymentMethod,omitempty"`
	ManuallyMarked  bool              `json:"manuallyMarked"`
	GatewayChargeID *string           `json:"gatewayChargeId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (i *Installment) Validate() error {
	if i.PlanID <= 0 {
		return ErrInstallmentPlanIDRequired
	}
	if i.Number < 1 {
		return ErrInstallmentNumberInvalid
	}
	if i.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInstallmentAmountInvalid
	}
	return nil
}

// IsPaid reports whether the installment has been paid, by any means.
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// IsGatewayPaid reports whether payment came from a real gateway charge.
// Gateway-confirmed payments are never toggled by admin action.
func (i *Installment) IsGatewayPaid() bool {
	return i.Status == InstallmentStatusPaid && !i.ManuallyMarked
}

// IsOverdue classifies the installment as overdue at the given instant.
// Both representations resolve through this one predicate: the stored
// `overdue` literal (written by the background sweep) and a pending row
// whose due date has passed. Aggregates must never count them separately.
func (i *Installment) IsOverdue(now time.Time) bool {
	if i.Status == InstallmentStatusOverdue {
		return true
	}
	return i.Status == InstallmentStatusPending && i.DueDate.Before(now)
}

// IsUnpaid reports whether the installment still awaits payment
// (pending or overdue, stored or derived).
func (i *Installment) IsUnpaid() bool {
	return i.Status != InstallmentStatusPaid
}

type InstallmentRepository interface {
	CreateBatch(installments []*Installment) error
	GetByID(id int32) (*Installment, error)
	GetByPlanID(planID int32) ([]*Installment, error)
	GetByGatewayChargeID(chargeID string) (*Installment, error)
	// SetPaid marks the installment paid. manual records an admin override;
	// chargeID attributes a gateway confirmation.
	SetPaid(id int32, paidAt time.Time, method *string, manual bool, chargeID *string) (*Installment, error)
	// SetPending reverts an installment to pending, clearing paidAt,
	// paymentMethod attribution and the manual marker.
	SetPending(id int32) (*Installment, error)
	// SetGatewayChargeID stores the charge correlation id when a checkout
	// session is created, before any payment lands.
	SetGatewayChargeID(id int32, chargeID string) (*Installment, error)
	// MarkOverdueBefore persists the overdue literal on pending
	// installments due strictly before cutoff. Returns rows affected.
	MarkOverdueBefore(cutoff time.Time) (int64, error)
}
