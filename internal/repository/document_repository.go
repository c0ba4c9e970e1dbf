package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

// DocumentRepository persists document metadata. Files live in pkg/storage;
// rows here carry the relative path and content hash only.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, property_id, type, file_name, file_path, content_hash,
       size_bytes, description, uploaded_by, uploaded_at`

// Create inserts a new document row.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	if document.UploadedAt.IsZero() {
		document.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documents
	(id, property_id, type, file_name, file_path, content_hash, size_bytes, description, uploaded_by, uploaded_at)
	VALUES (:id, :property_id, :type, :file_name, :file_path, :content_hash, :size_bytes, :description, :uploaded_by, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID fetches a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// ListByProperty returns documents for a property in insertion order.
func (r *DocumentRepository) ListByProperty(ctx context.Context, propertyID string) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE property_id = $1 ORDER BY uploaded_at, id`, documentColumns)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, propertyID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// FindByHash returns the document whose content hash matches exactly.
func (r *DocumentRepository) FindByHash(ctx context.Context, hash string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE content_hash = $1`, documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, hash); err != nil {
		return nil, err
	}
	return &document, nil
}

// Count returns the total number of stored documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
