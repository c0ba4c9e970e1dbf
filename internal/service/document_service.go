package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.Document, error)
}

type documentPropertyStore interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	UpdateTitleHash(ctx context.Context, propertyID, hash string, at time.Time) error
}

type blobStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type urlSigner interface {
	Generate(recordID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (recordID, relPath string, expiresAt time.Time, err error)
}

// DocumentUpload carries the raw file accepted from a multipart request.
type DocumentUpload struct {
	FileName string
	Size     int64
	Content  []byte
}

// SignedDownload describes a short-lived download grant.
type SignedDownload struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentService manages the document store: uploads are hashed, written to
// blob storage, and recorded against the owning property.
type DocumentService struct {
	documents  documentStore
	properties documentPropertyStore
	storage    blobStorage
	signer     urlSigner
	audit      auditWriter
	maxBytes   int64
	logger     *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents documentStore, properties documentPropertyStore, storage blobStorage, signer urlSigner, audit auditWriter, maxBytes int64, logger *zap.Logger) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents:  documents,
		properties: properties,
		storage:    storage,
		signer:     signer,
		audit:      audit,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Upload validates and stores a file against a property, then refreshes the
// property title hash with the new document's content hash.
func (s *DocumentService) Upload(ctx context.Context, propertyID string, req dto.UploadDocumentRequest, upload DocumentUpload, actor *models.JWTClaims) (*models.Document, error) {
	if !models.ValidDocumentType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unrecognised document type %q", req.Type))
	}
	if upload.Size <= 0 || len(upload.Content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty")
	}
	if upload.Size > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d MiB limit", s.maxBytes>>20))
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if actor.Role != models.RoleAdmin && property.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner may attach documents")
	}

	sum := sha256.Sum256(upload.Content)
	contentHash := hex.EncodeToString(sum[:])

	relPath := filepath.Join(property.ID, uuid.NewString()+strings.ToLower(filepath.Ext(upload.FileName)))
	storedPath, err := s.storage.Save(relPath, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	document := &models.Document{
		PropertyID:  property.ID,
		Type:        req.Type,
		FileName:    filepath.Base(upload.FileName),
		FilePath:    storedPath,
		ContentHash: contentHash,
		SizeBytes:   upload.Size,
		UploadedBy:  actor.UserID,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		document.Description = &desc
	}
	if err := s.documents.Create(ctx, document); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	if err := s.properties.UpdateTitleHash(ctx, property.ID, contentHash, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to refresh title hash",
			zap.String("property_id", property.ID), zap.Error(err))
	}

	s.emitAudit(ctx, actor.UserID, document.ID, map[string]interface{}{
		"property_id":  property.ID,
		"type":         document.Type,
		"content_hash": contentHash,
		"size_bytes":   document.SizeBytes,
	})
	s.logger.Info("document uploaded",
		zap.String("document_id", document.ID),
		zap.String("property_id", property.ID),
		zap.String("type", string(document.Type)),
	)
	return document, nil
}

// ListByProperty returns documents attached to a property in upload order.
func (s *DocumentService) ListByProperty(ctx context.Context, propertyID string, actor *models.JWTClaims) ([]models.Document, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if actor.Role != models.RoleAdmin && property.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "property belongs to another owner")
	}

	documents, err := s.documents.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

// DownloadGrant issues a short-lived signed token for fetching the file.
func (s *DocumentService) DownloadGrant(ctx context.Context, documentID string, actor *models.JWTClaims) (*SignedDownload, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	property, err := s.properties.GetByID(ctx, document.PropertyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if actor.Role != models.RoleAdmin && property.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document belongs to another owner")
	}

	token, expiresAt, err := s.signer.Generate(document.ID, document.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	return &SignedDownload{
		Token:     token,
		URL:       fmt.Sprintf("/api/v1/documents/%s/download?token=%s", document.ID, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve validates a signed token and opens the underlying file.
func (s *DocumentService) Resolve(ctx context.Context, documentID, token string) (*models.Document, *os.File, error) {
	recordID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	if recordID != documentID {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match document")
	}

	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if document.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match stored file")
	}

	file, err := s.storage.Open(document.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	return document, file, nil
}

func (s *DocumentService) emitAudit(ctx context.Context, userID, documentID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionDocumentUpload,
		Resource:   "document",
		ResourceID: &documentID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record document audit log", zap.Error(err))
	}
}
