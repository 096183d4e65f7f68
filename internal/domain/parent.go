package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrParentNotFound     = errors.New("parent not found")
	ErrParentNameEmpty    = errors.New("parent name is required")
	ErrParentNameTooLong  = errors.New("parent name must be 200 characters or less")
	ErrParentEmailInvalid = errors.New("parent email is invalid")
)

// Parent is a parent/guardian record. Players are registered under a
// parent; payment plans and contracts hang off the parent.
type Parent struct {
	ID         int32      `json:"id"`
	ProgramID  int32      `json:"programId"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	PlayerName *string    `json:"playerName,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

func (p *Parent) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrParentNameEmpty
	}
	if len(p.FirstName) > MaxNameLength || len(p.LastName) > MaxNameLength {
		return ErrParentNameTooLong
	}
	if !strings.Contains(p.Email, "@") {
		return ErrParentEmailInvalid
	}
	return nil
}

// FullName returns "First Last" for display and message templating.
func (p *Parent) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type ParentRepository interface {
	Create(parent *Parent) (*Parent, error)
	GetByID(programID int32, id int32) (*Parent, error)
	GetAllByProgram(programID int32) ([]*Parent, error)
	Update(parent *Parent) (*Parent, error)
	SoftDelete(programID int32, id int32) error
}
