package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
)

type propertyStore interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error)
	ExistsBySurveyNumber(ctx context.Context, surveyNumber string) (bool, error)
}

// PropertyService manages the property registry. Survey number, address and
// area are fixed at registration; ownership changes only through the
// mutation workflow.
type PropertyService struct {
	properties propertyStore
	audit      auditWriter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPropertyService constructs a PropertyService.
func NewPropertyService(properties propertyStore, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *PropertyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{properties: properties, audit: audit, validator: validate, logger: logger}
}

// Register records a new land parcel owned by the acting user.
func (s *PropertyService) Register(ctx context.Context, req dto.CreatePropertyRequest, actor *models.JWTClaims) (*models.Property, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid property payload")
	}

	surveyNumber := strings.TrimSpace(req.SurveyNumber)
	taken, err := s.properties.ExistsBySurveyNumber(ctx, surveyNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check survey number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "survey number is already registered")
	}

	property := &models.Property{
		SurveyNumber: surveyNumber,
		Address:      strings.TrimSpace(req.Address),
		AreaSqFt:     req.AreaSqFt,
		GeoLatitude:  req.GeoLatitude,
		GeoLongitude: req.GeoLongitude,
		OwnerID:      actor.UserID,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create property")
	}

	s.emitAudit(ctx, actor.UserID, property.ID, map[string]interface{}{
		"survey_number": property.SurveyNumber,
		"area_sqft":     property.AreaSqFt,
	})
	s.logger.Info("property registered",
		zap.String("property_id", property.ID),
		zap.String("survey_number", property.SurveyNumber),
	)
	return property, nil
}

// Get loads a property. Citizens may only see parcels they own.
func (s *PropertyService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if actor.Role != models.RoleAdmin && property.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "property belongs to another owner")
	}
	return property, nil
}

// List returns properties visible to the actor, newest first. Admins see the
// full registry; citizens see their own holdings.
func (s *PropertyService) List(ctx context.Context, query dto.PropertyQuery, actor *models.JWTClaims) ([]models.Property, models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	filter := models.PropertyFilter{
		OwnerID: query.OwnerID,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	if actor.Role != models.RoleAdmin {
		filter.OwnerID = actor.UserID
	}

	properties, err := s.properties.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list properties")
	}
	pagination := models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(properties)}
	return properties, pagination, nil
}

func (s *PropertyService) emitAudit(ctx context.Context, userID, propertyID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionPropertyCreate,
		Resource:   "property",
		ResourceID: &propertyID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record property audit log", zap.Error(err))
	}
}
