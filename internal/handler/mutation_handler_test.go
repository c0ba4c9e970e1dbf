package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/middleware"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/repository"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	"github.com/bhoomi-portal/land-registry-api/pkg/response"
)

type mutationRepoStub struct {
	mutation   *models.Mutation
	approveErr error
	cancelErr  error
}

func (s *mutationRepoStub) Create(ctx context.Context, mutation *models.Mutation) error {
	mutation.ID = "mut-1"
	mutation.CreatedAt = time.Now().UTC()
	s.mutation = mutation
	return nil
}

func (s *mutationRepoStub) GetByID(ctx context.Context, id string) (*models.Mutation, error) {
	if s.mutation == nil || s.mutation.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *s.mutation
	return &clone, nil
}

func (s *mutationRepoStub) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	return false, nil
}

func (s *mutationRepoStub) List(ctx context.Context, filter models.MutationFilter) ([]models.Mutation, error) {
	if s.mutation == nil {
		return nil, nil
	}
	return []models.Mutation{*s.mutation}, nil
}

func (s *mutationRepoStub) Approve(ctx context.Context, params repository.ApproveMutationParams) error {
	if s.approveErr != nil {
		return s.approveErr
	}
	s.mutation.Status = models.MutationStatusApproved
	return nil
}

func (s *mutationRepoStub) Reject(ctx context.Context, params repository.RejectMutationParams) error {
	s.mutation.Status = models.MutationStatusRejected
	return nil
}

func (s *mutationRepoStub) Cancel(ctx context.Context, id string, at time.Time) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.mutation.CancelledAt = &at
	return nil
}

type propertyRepoStub struct {
	property *models.Property
}

func (s *propertyRepoStub) GetByID(ctx context.Context, id string) (*models.Property, error) {
	if s.property == nil || s.property.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *s.property
	return &clone, nil
}

type userRepoStub struct{}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, FullName: "Test User"}, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newMutationHandlerForTest(t *testing.T) (*MutationHandler, *mutationRepoStub) {
	t.Helper()
	repo := &mutationRepoStub{}
	properties := &propertyRepoStub{property: &models.Property{ID: "prop-1", SurveyNumber: "123/456", OwnerID: "owner-1"}}
	svc := service.NewMutationService(repo, properties, &userRepoStub{}, nil, nil, service.FeeSchedule{}, nil)
	return NewMutationHandler(svc, nil), repo
}

func TestMutationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newMutationHandlerForTest(t)

	payload, _ := json.Marshal(dto.CreateMutationRequest{
		PropertyID: "prop-1",
		NewOwnerID: "owner-2",
		Reason:     models.MutationReasonSale,
	})
	c, w := newGinContext(http.MethodPost, "/mutations", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "owner-1", Role: models.RoleCitizen})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, _ := json.Marshal(envelope.Data)
	var mutation models.Mutation
	require.NoError(t, json.Unmarshal(data, &mutation))
	require.Equal(t, models.MutationStatusPending, mutation.Status)
	require.Regexp(t, `^MUT-\d{5}$`, mutation.TransactionID)
}

func TestMutationHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newMutationHandlerForTest(t)

	c, w := newGinContext(http.MethodPost, "/mutations", []byte(`{}`))
	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMutationHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newMutationHandlerForTest(t)
	repo.mutation = &models.Mutation{
		ID: "mut-1", TransactionID: "MUT-00042", PropertyID: "prop-1",
		PreviousOwnerID: "owner-1", NewOwnerID: "owner-2",
		Reason: models.MutationReasonSale, Status: models.MutationStatusPending,
		RequestedBy: "owner-1",
	}

	payload, _ := json.Marshal(dto.ApproveMutationRequest{PropertyValue: 1_000_000})
	c, w := newGinContext(http.MethodPost, "/mutations/mut-1/approve", payload)
	c.Params = gin.Params{{Key: "id", Value: "mut-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"approved"`)
	require.Contains(t, w.Body.String(), `"stamp_duty":50000`)
}

func TestMutationHandlerApproveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newMutationHandlerForTest(t)
	repo.mutation = &models.Mutation{
		ID: "mut-1", Status: models.MutationStatusPending,
		PropertyID: "prop-1", PreviousOwnerID: "owner-1", NewOwnerID: "owner-2",
	}
	repo.approveErr = repository.ErrOwnerChanged

	payload, _ := json.Marshal(dto.ApproveMutationRequest{PropertyValue: 500_000})
	c, w := newGinContext(http.MethodPost, "/mutations/mut-1/approve", payload)
	c.Params = gin.Params{{Key: "id", Value: "mut-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Approve(c)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "CONFLICT")
}

func TestMutationHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newMutationHandlerForTest(t)
	repo.mutation = &models.Mutation{
		ID: "mut-1", Status: models.MutationStatusPending, RequestedBy: "owner-1",
	}

	c, w := newGinContext(http.MethodDelete, "/mutations/mut-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "mut-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "owner-1", Role: models.RoleCitizen})

	handler.Cancel(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, repo.mutation.CancelledAt)
}

func TestMutationHandlerParseStatuses(t *testing.T) {
	require.Nil(t, parseStatuses(""))
	require.Equal(t, []models.MutationStatus{"pending", "approved"}, parseStatuses("Pending, APPROVED"))
}
