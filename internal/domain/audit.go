package domain

import "time"

// Audit actions recorded for admin overrides and destructive operations.
const (
	AuditMarkedPaid       = "manually recorded as paid"
	AuditRevertedPending  = "reverted to pending"
	AuditGatewayConfirmed = "confirmed by payment gateway"
	AuditGatewayFailed    = "payment gateway charge failed"
	AuditParentDeleted    = "parent deleted"
	AuditBulkReassigned   = "bulk team reassignment"
	AuditBulkUndone       = "bulk team reassignment undone"
)

// AuditEntry is an append-only trail row. Writes are fire-and-forget:
// a failed audit write never blocks the operation it describes.
type AuditEntry struct {
	ID        int32     `json:"id"`
	ProgramID int32     `json:"programId"`
	Entity    string    `json:"entity"`
	EntityID  int32     `json:"entityId"`
	Action    string    `json:"action"`
	Detail    *string   `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditRepository interface {
	Create(entry *AuditEntry) error
	GetByEntity(programID int32, entity string, entityID int32) ([]*AuditEntry, error)
}
