package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractTitleEmpty    = errors.New("contract title is required")
	ErrContractParentEmpty   = errors.New("contract parent is required")
	ErrContractInvalidStatus = errors.New("invalid contract status transition")
)

// ContractStatus is the e-sign workflow state.
type ContractStatus string

const (
	ContractStatusDraft  ContractStatus = "draft"
	ContractStatusSent   ContractStatus = "sent"
	ContractStatusSigned ContractStatus = "signed"
	ContractStatusVoid   ContractStatus = "void"
)

// Contract is an uploaded agreement tied to a parent. The document body
// lives in object storage under ObjectKey; this row tracks workflow state.
type Contract struct {
	ID        int32          `json:"id"`
	ProgramID int32          `json:"programId"`
	ParentID  int32          `json:"parentId"`
	Title     string         `json:"title"`
	ObjectKey string         `json:"objectKey"`
	Status    ContractStatus `json:"status"`
	SentAt    *time.Time     `json:"sentAt,omitempty"`
	SignedAt  *time.Time     `json:"signedAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (c *Contract) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrContractTitleEmpty
	}
	if c.ParentID <= 0 {
		return ErrContractParentEmpty
	}
	return nil
}

// CanTransition reports whether the workflow allows moving to next.
// draft -> sent -> signed; void is reachable from draft and sent.
func (c *Contract) CanTransition(next ContractStatus) bool {
	switch next {
	case ContractStatusSent:
		return c.Status == ContractStatusDraft
	case ContractStatusSigned:
		return c.Status == ContractStatusSent
	case ContractStatusVoid:
		return c.Status == ContractStatusDraft || c.Status == ContractStatusSent
	default:
		return false
	}
}

type ContractRepository interface {
	Create(contract *Contract) (*Contract, error)
	GetByID(programID int32, id int32) (*Contract, error)
	GetByParent(programID int32, parentID int32) ([]*Contract, error)
	UpdateStatus(id int32, status ContractStatus, sentAt, signedAt *time.Time) (*Contract, error)
}
