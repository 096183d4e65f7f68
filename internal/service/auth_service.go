package service

import (
	"errors"
	"strings"

	"github.com/courtside/courtside-backend/internal/domain"
)

var ErrProgramNameRequired = errors.New("program name is required for onboarding")

// AuthService resolves an authenticated admin to their program, creating
// the program on first login
type AuthService struct {
	programRepo domain.ProgramRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(programRepo domain.ProgramRepository) *AuthService {
	return &AuthService{programRepo: programRepo}
}

// AuthResult is the outcome of the post-login callback
type AuthResult struct {
	Program      *domain.Program `json:"program"`
	IsNewProgram bool            `json:"isNewProgram"`
}

// Callback resolves the admin's program. An unknown subject with a
// program name onboards a new program; without one the login is rejected
// so a typo'd account doesn't silently spawn an empty tenant.
func (s *AuthService) Callback(subject, email, programName string) (*AuthResult, error) {
	program, err := s.programRepo.GetByAdminSubject(subject)
	if err == nil {
		return &AuthResult{Program: program}, nil
	}
	if !errors.Is(err, domain.ErrProgramNotFound) {
		return nil, err
	}

	programName = strings.TrimSpace(programName)
	if programName == "" {
		return nil, ErrProgramNameRequired
	}

	program, err = s.programRepo.CreateWithAdmin(programName, subject, email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Program: program, IsNewProgram: true}, nil
}

// CurrentProgram retrieves the program for an authenticated admin
func (s *AuthService) CurrentProgram(subject string) (*domain.Program, error) {
	return s.programRepo.GetByAdminSubject(subject)
}

// GetProgramBySubject implements middleware.ProgramProvider and
// websocket.ProgramLookup
func (s *AuthService) GetProgramBySubject(subject string) (int32, error) {
	program, err := s.programRepo.GetByAdminSubject(subject)
	if err != nil {
		return 0, err
	}
	return program.ID, nil
}
