package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of state change an event describes
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the entity the event is about
type EntityType string

const (
	EntityTypeParent      EntityType = "parent"
	EntityTypePaymentPlan EntityType = "payment_plan"
	EntityTypeInstallment EntityType = "installment"
	EntityTypePayment     EntityType = "payment"
	EntityTypeTeam        EntityType = "team"
	EntityTypeContract    EntityType = "contract"
)

// Additional event types for specific dashboard refreshes
const (
	EventTypeMarkedPaid     EventType = "marked_paid"
	EventTypeReverted       EventType = "reverted"
	EventTypeBulkReassigned EventType = "bulk_reassigned"
	EventTypeBulkUndone     EventType = "bulk_undone"
	EventTypeStatusChanged  EventType = "status_changed"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "installment.marked_paid"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "installment"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParentCreated creates a parent.created event
func ParentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeParent, payload)
}

// ParentUpdated creates a parent.updated event
func ParentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeParent, payload)
}

// ParentDeleted creates a parent.deleted event
func ParentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeParent, payload)
}

// PaymentPlanCreated creates a payment_plan.created event
func PaymentPlanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePaymentPlan, payload)
}

// PaymentPlanStatusChanged creates a payment_plan.status_changed event
func PaymentPlanStatusChanged(payload interface{}) Event {
	return NewEvent(EventTypeStatusChanged, EntityTypePaymentPlan, payload)
}

// InstallmentMarkedPaid creates an installment.marked_paid event
func InstallmentMarkedPaid(payload interface{}) Event {
	return NewEvent(EventTypeMarkedPaid, EntityTypeInstallment, payload)
}

// InstallmentReverted creates an installment.reverted event
func InstallmentReverted(payload interface{}) Event {
	return NewEvent(EventTypeReverted, EntityTypeInstallment, payload)
}

// PaymentUpdated creates a payment.updated event
func PaymentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePayment, payload)
}

// TeamBulkReassigned creates a team.bulk_reassigned event
func TeamBulkReassigned(payload interface{}) Event {
	return NewEvent(EventTypeBulkReassigned, EntityTypeTeam, payload)
}

// TeamBulkUndone creates a team.bulk_undone event
func TeamBulkUndone(payload interface{}) Event {
	return NewEvent(EventTypeBulkUndone, EntityTypeTeam, payload)
}

// ContractStatusChanged creates a contract.status_changed event
func ContractStatusChanged(payload interface{}) Event {
	return NewEvent(EventTypeStatusChanged, EntityTypeContract, payload)
}
