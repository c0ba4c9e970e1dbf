package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

// PropertyRepository persists registered land parcels.
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository constructs the repository.
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, survey_number, address, area_sqft, geo_latitude, geo_longitude,
       owner_id, title_hash, created_at, updated_at`

// Create inserts a new property row.
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	property.UpdatedAt = now
	const query = `INSERT INTO properties
	(id, survey_number, address, area_sqft, geo_latitude, geo_longitude, owner_id, title_hash, created_at, updated_at)
	VALUES (:id, :survey_number, :address, :area_sqft, :geo_latitude, :geo_longitude, :owner_id, :title_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, property); err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

// GetByID fetches a property by identifier.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	var property models.Property
	if err := r.db.GetContext(ctx, &property, query, id); err != nil {
		return nil, err
	}
	return &property, nil
}

// GetBySurveyNumber fetches a property by its jurisdictional identifier.
func (r *PropertyRepository) GetBySurveyNumber(ctx context.Context, surveyNumber string) (*models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE survey_number = $1`, propertyColumns)
	var property models.Property
	if err := r.db.GetContext(ctx, &property, query, surveyNumber); err != nil {
		return nil, err
	}
	return &property, nil
}

// List returns properties matching the filter, newest first.
func (r *PropertyRepository) List(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 2)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM properties", propertyColumns))

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		builder.WriteString(fmt.Sprintf(" WHERE owner_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY created_at DESC, id")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var properties []models.Property
	if err := r.db.SelectContext(ctx, &properties, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return properties, nil
}

// ExistsBySurveyNumber reports whether a survey number is already registered.
func (r *PropertyRepository) ExistsBySurveyNumber(ctx context.Context, surveyNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM properties WHERE survey_number = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, surveyNumber); err != nil {
		return false, fmt.Errorf("check survey number: %w", err)
	}
	return exists, nil
}

// UpdateTitleHash refreshes the canonical title-document hash.
func (r *PropertyRepository) UpdateTitleHash(ctx context.Context, propertyID, hash string, at time.Time) error {
	const query = `UPDATE properties SET title_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, hash, at, propertyID)
	if err != nil {
		return fmt.Errorf("update title hash: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check title hash rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of registered properties.
func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM properties`); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return count, nil
}
