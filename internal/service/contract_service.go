package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/repository/storage"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// presignedURLExpiry bounds how long a contract link in an email works.
const presignedURLExpiry = 7 * 24 * time.Hour

// ContractService handles the e-sign workflow: upload, send, sign, void
type ContractService struct {
	contractRepo   domain.ContractRepository
	parentRepo     domain.ParentRepository
	programRepo    domain.ProgramRepository
	docRepo        storage.DocumentRepository
	email          EmailSender
	eventPublisher websocket.EventPublisher
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo domain.ContractRepository, parentRepo domain.ParentRepository, programRepo domain.ProgramRepository, docRepo storage.DocumentRepository, email EmailSender) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		parentRepo:   parentRepo,
		programRepo:  programRepo,
		docRepo:      docRepo,
		email:        email,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ContractService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ContractService) publishEvent(programID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(programID, event)
	}
}

// UploadInput carries a contract document and its metadata
type UploadInput struct {
	ParentID    int32
	Title       string
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Upload stores the document in object storage and creates the contract
// row in draft status
func (s *ContractService) Upload(ctx context.Context, programID int32, input UploadInput) (*domain.Contract, error) {
	if _, err := s.parentRepo.GetByID(programID, input.ParentID); err != nil {
		return nil, err
	}

	contract := &domain.Contract{
		ProgramID: programID,
		ParentID:  input.ParentID,
		Title:     input.Title,
		Status:    domain.ContractStatusDraft,
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}

	objectKey := storage.GenerateObjectKey(programID, "contracts", input.ParentID, filepath.Ext(input.FileName))
	if _, err := s.docRepo.Upload(ctx, objectKey, input.Data, input.ContentType, input.Size); err != nil {
		return nil, err
	}
	contract.ObjectKey = objectKey

	created, err := s.contractRepo.Create(contract)
	if err != nil {
		// Orphaned object, best-effort cleanup
		if delErr := s.docRepo.Delete(ctx, objectKey); delErr != nil {
			log.Warn().Err(delErr).Str("object_key", objectKey).Msg("Failed to clean up orphaned contract object")
		}
		return nil, err
	}
	return created, nil
}

// GetContract retrieves a contract by ID
func (s *ContractService) GetContract(programID int32, id int32) (*domain.Contract, error) {
	return s.contractRepo.GetByID(programID, id)
}

// GetParentContracts retrieves a parent's contracts
func (s *ContractService) GetParentContracts(programID int32, parentID int32) ([]*domain.Contract, error) {
	if _, err := s.parentRepo.GetByID(programID, parentID); err != nil {
		return nil, err
	}
	return s.contractRepo.GetByParent(programID, parentID)
}

// DocumentURL generates a short-lived presigned link to the document
func (s *ContractService) DocumentURL(ctx context.Context, programID int32, id int32) (string, error) {
	contract, err := s.contractRepo.GetByID(programID, id)
	if err != nil {
		return "", err
	}
	return s.docRepo.GeneratePresignedURL(ctx, contract.ObjectKey, time.Hour)
}

// SendContract moves a draft contract to sent and emails the parent a
// presigned link to review and sign
func (s *ContractService) SendContract(ctx context.Context, programID int32, id int32) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(programID, id)
	if err != nil {
		return nil, err
	}
	if !contract.CanTransition(domain.ContractStatusSent) {
		return nil, domain.ErrContractInvalidStatus
	}

	parent, err := s.parentRepo.GetByID(programID, contract.ParentID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(programID)
	if err != nil {
		return nil, err
	}

	url, err := s.docRepo.GeneratePresignedURL(ctx, contract.ObjectKey, presignedURLExpiry)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("%s: %s is ready for your signature", program.Name, contract.Title)
	body := fmt.Sprintf("Hi %s,\n\n%s has sent you a contract to review and sign: %s\n\nReview it here: %s\n\nThis link expires in 7 days.",
		parent.FullName(), program.Name, contract.Title, url)
	if err := s.email.Send(parent.Email, subject, body); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.contractRepo.UpdateStatus(id, domain.ContractStatusSent, &now, nil)
	if err != nil {
		return nil, err
	}

	s.publishEvent(programID, websocket.ContractStatusChanged(updated))
	return updated, nil
}

// MarkSigned records the parent's signature on a sent contract
func (s *ContractService) MarkSigned(programID int32, id int32) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(programID, id)
	if err != nil {
		return nil, err
	}
	if !contract.CanTransition(domain.ContractStatusSigned) {
		return nil, domain.ErrContractInvalidStatus
	}

	now := time.Now()
	updated, err := s.contractRepo.UpdateStatus(id, domain.ContractStatusSigned, nil, &now)
	if err != nil {
		return nil, err
	}

	s.publishEvent(programID, websocket.ContractStatusChanged(updated))
	return updated, nil
}

// Void cancels a draft or sent contract
func (s *ContractService) Void(programID int32, id int32) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(programID, id)
	if err != nil {
		return nil, err
	}
	if !contract.CanTransition(domain.ContractStatusVoid) {
		return nil, domain.ErrContractInvalidStatus
	}

	updated, err := s.contractRepo.UpdateStatus(id, domain.ContractStatusVoid, nil, nil)
	if err != nil {
		return nil, err
	}

	s.publishEvent(programID, websocket.ContractStatusChanged(updated))
	return updated, nil
}
