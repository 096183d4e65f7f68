package service

import (
	"context"
	"strings"
	"testing"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contractFixture struct {
	svc          *ContractService
	contractRepo *testutil.MockContractRepository
	parentRepo   *testutil.MockParentRepository
	programRepo  *testutil.MockProgramRepository
	docRepo      *testutil.MockDocumentRepository
	email        *testutil.MockEmailSender
}

func newContractFixture() *contractFixture {
	f := &contractFixture{
		contractRepo: testutil.NewMockContractRepository(),
		parentRepo:   testutil.NewMockParentRepository(),
		programRepo:  testutil.NewMockProgramRepository(),
		docRepo:      testutil.NewMockDocumentRepository(),
		email:        &testutil.MockEmailSender{},
	}
	f.svc = NewContractService(f.contractRepo, f.parentRepo, f.programRepo, f.docRepo, f.email)

	f.programRepo.AddProgram(&domain.Program{ID: 1, Name: "Courtside Hoops"}, "")
	f.parentRepo.AddParent(&domain.Parent{
		ID: 10, ProgramID: 1,
		FirstName: "Dana", LastName: "Lee",
		Email: "dana@example.com",
	})
	return f
}

func uploadDraft(t *testing.T, f *contractFixture) *domain.Contract {
	t.Helper()
	contract, err := f.svc.Upload(context.Background(), 1, UploadInput{
		ParentID:    10,
		Title:       "Season Agreement",
		FileName:    "agreement.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Data:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	return contract
}

func TestUpload_CreatesDraftWithStoredObject(t *testing.T) {
	f := newContractFixture()

	contract := uploadDraft(t, f)
	assert.Equal(t, domain.ContractStatusDraft, contract.Status)
	assert.NotEmpty(t, contract.ObjectKey)
	assert.Contains(t, f.docRepo.Objects, contract.ObjectKey)
}

func TestUpload_UnknownParent(t *testing.T) {
	f := newContractFixture()

	_, err := f.svc.Upload(context.Background(), 1, UploadInput{
		ParentID: 99,
		Title:    "Season Agreement",
		FileName: "agreement.pdf",
		Data:     strings.NewReader("%PDF"),
	})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
	assert.Empty(t, f.docRepo.Objects)
}

func TestSendContract_EmailsPresignedLink(t *testing.T) {
	f := newContractFixture()
	contract := uploadDraft(t, f)

	sent, err := f.svc.SendContract(context.Background(), 1, contract.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ContractStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	require.Len(t, f.email.Sent, 1)
	assert.Equal(t, "dana@example.com", f.email.Sent[0].To)
	assert.Contains(t, f.email.Sent[0].Body, contract.ObjectKey)
}

func TestSendContract_OnlyFromDraft(t *testing.T) {
	f := newContractFixture()
	contract := uploadDraft(t, f)

	_, err := f.svc.SendContract(context.Background(), 1, contract.ID)
	require.NoError(t, err)

	_, err = f.svc.SendContract(context.Background(), 1, contract.ID)
	assert.ErrorIs(t, err, domain.ErrContractInvalidStatus)
}

func TestMarkSigned_RecordsSignedAt(t *testing.T) {
	f := newContractFixture()
	contract := uploadDraft(t, f)

	_, err := f.svc.MarkSigned(1, contract.ID)
	assert.ErrorIs(t, err, domain.ErrContractInvalidStatus, "draft cannot be signed before it is sent")

	_, err = f.svc.SendContract(context.Background(), 1, contract.ID)
	require.NoError(t, err)

	signed, err := f.svc.MarkSigned(1, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)
}

func TestVoid_BlockedAfterSigning(t *testing.T) {
	f := newContractFixture()
	contract := uploadDraft(t, f)

	_, err := f.svc.SendContract(context.Background(), 1, contract.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkSigned(1, contract.ID)
	require.NoError(t, err)

	_, err = f.svc.Void(1, contract.ID)
	assert.ErrorIs(t, err, domain.ErrContractInvalidStatus)
}

func TestVoid_FromDraft(t *testing.T) {
	f := newContractFixture()
	contract := uploadDraft(t, f)

	voided, err := f.svc.Void(1, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusVoid, voided.Status)
}
