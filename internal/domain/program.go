package domain

import "time"

// Program is the tenant: one basketball program (club) per admin team.
// All parent, plan and team data is scoped to a program.
type Program struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProgramRepository interface {
	GetByID(id int32) (*Program, error)
	// GetByAdminSubject resolves the program an authenticated admin
	// (Auth0 subject) belongs to.
	GetByAdminSubject(subject string) (*Program, error)
	CreateWithAdmin(name string, subject string, email string) (*Program, error)
}
