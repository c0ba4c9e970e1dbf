package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
)

type propertyLookupStub struct {
	property *models.Property
}

func (s *propertyLookupStub) GetBySurveyNumber(ctx context.Context, surveyNumber string) (*models.Property, error) {
	if s.property != nil && s.property.SurveyNumber == surveyNumber {
		return s.property, nil
	}
	return nil, sql.ErrNoRows
}

type documentLookupStub struct{}

func (s documentLookupStub) FindByHash(ctx context.Context, hash string) (*models.Document, error) {
	return nil, sql.ErrNoRows
}

type mutationLookupStub struct{}

func (s mutationLookupStub) GetByTransactionID(ctx context.Context, transactionID string) (*models.Mutation, error) {
	return nil, sql.ErrNoRows
}

func newEngineForTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verification := service.NewVerificationService(
		&propertyLookupStub{property: &models.Property{ID: "prop-1", SurveyNumber: "123/456", Address: "Village Rampur", OwnerID: "owner-1"}},
		documentLookupStub{},
		mutationLookupStub{},
		nil, 0, nil, nil,
	)

	engine, err := New(Dependencies{
		Auth:         service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: "secret"}),
		Properties:   service.NewPropertyService(nil, nil, nil, nil),
		Documents:    service.NewDocumentService(nil, nil, nil, nil, nil, 0, nil),
		Mutations:    service.NewMutationService(nil, nil, nil, nil, nil, service.FeeSchedule{}, nil),
		Certificates: service.NewCertificateService(nil, nil, nil, nil),
		Verification: verification,
		Reports:      service.NewReportService(nil, nil, nil, nil, nil),
	})
	require.NoError(t, err)
	return engine
}

// Survey numbers contain slashes, so the verify-property lookup must route
// through a query parameter, not a path segment.
func TestRouterVerifyPropertyWithSlashedSurveyNumber(t *testing.T) {
	engine := newEngineForTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/verify/property?survey_number=123%2F456", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"verified":true`)
	require.Contains(t, w.Body.String(), "123/456")
}

func TestRouterVerifyPropertyMissingParam(t *testing.T) {
	engine := newEngineForTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/verify/property", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestRouterHealthAndProtectedRoutes(t *testing.T) {
	engine := newEngineForTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/mutations", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
