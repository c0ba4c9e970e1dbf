package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
)

type verifyDocumentRepoStub struct{}

func (s *verifyDocumentRepoStub) FindByHash(ctx context.Context, hash string) (*models.Document, error) {
	return nil, sql.ErrNoRows
}

type verifyMutationRepoStub struct {
	mutation *models.Mutation
}

func (s *verifyMutationRepoStub) GetByTransactionID(ctx context.Context, transactionID string) (*models.Mutation, error) {
	if s.mutation == nil || s.mutation.TransactionID != transactionID {
		return nil, sql.ErrNoRows
	}
	return s.mutation, nil
}

func newVerificationHandlerForTest(t *testing.T, mutation *models.Mutation) *VerificationHandler {
	t.Helper()
	properties := &propertyRepoStub{property: &models.Property{ID: "prop-1", SurveyNumber: "123/456", Address: "Village Rampur", OwnerID: "owner-1"}}
	svc := service.NewVerificationService(
		verificationPropertyStub{properties},
		&verifyDocumentRepoStub{},
		&verifyMutationRepoStub{mutation: mutation},
		nil, 0, nil, nil,
	)
	return NewVerificationHandler(svc)
}

// verificationPropertyStub adapts propertyRepoStub to survey-number lookup.
type verificationPropertyStub struct {
	repo *propertyRepoStub
}

func (s verificationPropertyStub) GetBySurveyNumber(ctx context.Context, surveyNumber string) (*models.Property, error) {
	if s.repo.property != nil && s.repo.property.SurveyNumber == surveyNumber {
		return s.repo.property, nil
	}
	return nil, sql.ErrNoRows
}

// Survey numbers carry slashes, so the lookup rides a query parameter; a
// path segment would never route.
func TestVerificationHandlerPropertyFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newVerificationHandlerForTest(t, nil)

	c, w := newGinContext(http.MethodGet, "/verify/property?survey_number=123%2F456", nil)

	handler.Property(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"verified":true`)
	require.Contains(t, w.Body.String(), "123/456")
}

func TestVerificationHandlerPropertyMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newVerificationHandlerForTest(t, nil)

	c, w := newGinContext(http.MethodGet, "/verify/property?survey_number=999%2F999", nil)

	handler.Property(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestVerificationHandlerDocumentBadHash(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newVerificationHandlerForTest(t, nil)

	c, w := newGinContext(http.MethodGet, "/verify/document/abc", nil)
	c.Params = gin.Params{{Key: "hash", Value: "abc"}}

	handler.Document(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestVerificationHandlerMutation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash := "feedface"
	handler := newVerificationHandlerForTest(t, &models.Mutation{
		TransactionID: "MUT-00042", PropertyID: "prop-1",
		Status: models.MutationStatusApproved, Reason: models.MutationReasonSale,
		VerificationHash: &hash,
	})

	c, w := newGinContext(http.MethodGet, "/verify/mutation/mut-00042", nil)
	c.Params = gin.Params{{Key: "transactionId", Value: "mut-00042"}}

	handler.Mutation(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "MUT-00042")
	require.Contains(t, w.Body.String(), "feedface")
}
