package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
)

func (s *propertyStoreStub) GetBySurveyNumber(ctx context.Context, surveyNumber string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.properties {
		if p.SurveyNumber == surveyNumber {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *documentStoreStub) FindByHash(ctx context.Context, hash string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.documents {
		if d.ContentHash == hash {
			clone := *d
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *mutationStoreStub) GetByTransactionID(ctx context.Context, transactionID string) (*models.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mutations {
		if strings.EqualFold(m.TransactionID, transactionID) && m.CancelledAt == nil {
			clone := *m
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newVerificationServiceForTest(t *testing.T) (*VerificationService, *propertyStoreStub, *documentStoreStub, *mutationStoreStub, *auditStub) {
	t.Helper()
	properties := newPropertyStoreStub()
	documents := newDocumentStoreStub()
	mutations := newMutationStoreStub(properties)
	audit := &auditStub{}
	svc := NewVerificationService(properties, documents, mutations, nil, 0, audit, nil)
	return svc, properties, documents, mutations, audit
}

func TestVerifyPropertyFoundAndMissing(t *testing.T) {
	svc, properties, _, _, audit := newVerificationServiceForTest(t)
	hash := "abc123"
	properties.add(&models.Property{ID: "prop-1", SurveyNumber: "123/456", Address: "Village Rampur", AreaSqFt: 2400, OwnerID: "owner-1", TitleHash: &hash})

	result, err := svc.VerifyProperty(context.Background(), "  123/456  ")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "123/456", result.SurveyNumber)
	require.NotNil(t, result.TitleHash)
	assert.Equal(t, "abc123", *result.TitleHash)

	_, err = svc.VerifyProperty(context.Background(), "999/999")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	// Both the hit and the miss leave an anonymous audit trail.
	require.Len(t, audit.logs, 2)
	assert.Nil(t, audit.logs[0].UserID)
	assert.Equal(t, models.AuditActionVerification, audit.logs[1].Action)
}

func TestVerifyPropertyRequiresSurveyNumber(t *testing.T) {
	svc, _, _, _, _ := newVerificationServiceForTest(t)
	_, err := svc.VerifyProperty(context.Background(), "   ")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestVerifyDocumentHashGuards(t *testing.T) {
	svc, _, documents, _, _ := newVerificationServiceForTest(t)
	hash := strings.Repeat("ab", 32)
	documents.documents["doc-1"] = &models.Document{
		ID: "doc-1", PropertyID: "prop-1", Type: models.DocumentTypeSaleDeed, ContentHash: hash,
	}

	result, err := svc.VerifyDocument(context.Background(), strings.ToUpper(hash))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "doc-1", result.DocumentID)

	var appErr *appErrors.Error
	_, err = svc.VerifyDocument(context.Background(), "abc123")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.VerifyDocument(context.Background(), strings.Repeat("cd", 32))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestVerifyMutationByTransactionID(t *testing.T) {
	svc, _, _, mutations, _ := newVerificationServiceForTest(t)
	hash := "feedface"
	ereg := "EREG/00042/2026"
	mutations.mutations["mut-1"] = &models.Mutation{
		ID:               "mut-1",
		TransactionID:    "MUT-00042",
		PropertyID:       "prop-1",
		Status:           models.MutationStatusApproved,
		Reason:           models.MutationReasonSale,
		VerificationHash: &hash,
		ERegistryNumber:  &ereg,
	}

	result, err := svc.VerifyMutation(context.Background(), "mut-00042")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, models.MutationStatusApproved, result.Status)
	require.NotNil(t, result.ERegistryNumber)
	assert.Equal(t, ereg, *result.ERegistryNumber)

	_, err = svc.VerifyMutation(context.Background(), "MUT-99999")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestVerifyMutationPendingHasNoStampedFields(t *testing.T) {
	svc, _, _, mutations, _ := newVerificationServiceForTest(t)
	mutations.mutations["mut-1"] = &models.Mutation{
		ID:            "mut-1",
		TransactionID: "MUT-00001",
		PropertyID:    "prop-1",
		Status:        models.MutationStatusPending,
		Reason:        models.MutationReasonInheritance,
	}

	result, err := svc.VerifyMutation(context.Background(), "MUT-00001")
	require.NoError(t, err)
	assert.Equal(t, models.MutationStatusPending, result.Status)
	assert.Nil(t, result.VerificationHash)
	assert.Nil(t, result.ERegistryNumber)
	assert.Nil(t, result.ReviewedAt)
}
