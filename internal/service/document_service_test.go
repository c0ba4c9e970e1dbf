package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/storage"
)

func (s *propertyStoreStub) UpdateTitleHash(ctx context.Context, propertyID, hash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	property, ok := s.properties[propertyID]
	if !ok {
		return sql.ErrNoRows
	}
	property.TitleHash = &hash
	return nil
}

type documentStoreStub struct {
	mu        sync.Mutex
	documents map[string]*models.Document
}

func newDocumentStoreStub() *documentStoreStub {
	return &documentStoreStub{documents: map[string]*models.Document{}}
}

func (s *documentStoreStub) Create(ctx context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	document.UploadedAt = time.Now().UTC()
	clone := *document
	s.documents[document.ID] = &clone
	return nil
}

func (s *documentStoreStub) GetByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *document
	return &clone, nil
}

func (s *documentStoreStub) ListByProperty(ctx context.Context, propertyID string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Document
	for _, d := range s.documents {
		if d.PropertyID == propertyID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func newDocumentServiceForTest(t *testing.T) (*DocumentService, *documentStoreStub, *propertyStoreStub) {
	t.Helper()
	properties := newPropertyStoreStub()
	documents := newDocumentStoreStub()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	svc := NewDocumentService(documents, properties, blobs, signer, &auditStub{}, 0, nil)
	return svc, documents, properties
}

func TestDocumentUploadHashesAndRefreshesTitle(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	content := []byte("scanned sale deed")
	sum := sha256.Sum256(content)

	document, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{
		Type: models.DocumentTypeSaleDeed,
	}, DocumentUpload{FileName: "deed.PDF", Size: int64(len(content)), Content: content}, citizenClaims("owner-1"))
	require.NoError(t, err)

	assert.Equal(t, hex.EncodeToString(sum[:]), document.ContentHash)
	assert.Equal(t, "deed.PDF", document.FileName)
	assert.NotEmpty(t, document.FilePath)

	property, err := properties.GetByID(context.Background(), "prop-1")
	require.NoError(t, err)
	require.NotNil(t, property.TitleHash)
	assert.Equal(t, document.ContentHash, *property.TitleHash)
}

func TestDocumentUploadRejectsOversizeAndEmpty(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	var appErr *appErrors.Error
	_, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		DocumentUpload{FileName: "deed.pdf", Size: 11 << 20, Content: []byte("x")}, citizenClaims("owner-1"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		DocumentUpload{FileName: "deed.pdf"}, citizenClaims("owner-1"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentUploadRejectsUnknownType(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	_, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: "title_photo"},
		DocumentUpload{FileName: "x.jpg", Size: 4, Content: []byte("jpeg")}, citizenClaims("owner-1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentUploadOnlyOwnerOrAdmin(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	upload := DocumentUpload{FileName: "deed.pdf", Size: 4, Content: []byte("deed")}
	_, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		upload, citizenClaims("owner-2"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	_, err = svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		upload, adminClaims())
	require.NoError(t, err)
}

func TestDocumentGrantAndResolveRoundtrip(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	content := []byte("scanned khatauni extract")
	document, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeKhatauni},
		DocumentUpload{FileName: "khatauni.pdf", Size: int64(len(content)), Content: content}, citizenClaims("owner-1"))
	require.NoError(t, err)

	grant, err := svc.DownloadGrant(context.Background(), document.ID, citizenClaims("owner-1"))
	require.NoError(t, err)
	assert.Contains(t, grant.URL, document.ID)
	assert.True(t, grant.ExpiresAt.After(time.Now()))

	resolved, file, err := svc.Resolve(context.Background(), document.ID, grant.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, document.ID, resolved.ID)

	stat, err := file.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), stat.Size())
}

func TestDocumentResolveRejectsMismatchedToken(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	first, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		DocumentUpload{FileName: "a.pdf", Size: 1, Content: []byte("a")}, citizenClaims("owner-1"))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeNOC},
		DocumentUpload{FileName: "b.pdf", Size: 1, Content: []byte("b")}, citizenClaims("owner-1"))
	require.NoError(t, err)

	grant, err := svc.DownloadGrant(context.Background(), first.ID, citizenClaims("owner-1"))
	require.NoError(t, err)

	_, _, err = svc.Resolve(context.Background(), second.ID, grant.Token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)

	_, _, err = svc.Resolve(context.Background(), first.ID, "not.a.real.token")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestDocumentGrantScopedToOwner(t *testing.T) {
	svc, _, properties := newDocumentServiceForTest(t)
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})

	document, err := svc.Upload(context.Background(), "prop-1", dto.UploadDocumentRequest{Type: models.DocumentTypeSaleDeed},
		DocumentUpload{FileName: "deed.pdf", Size: 4, Content: []byte("deed")}, citizenClaims("owner-1"))
	require.NoError(t, err)

	_, err = svc.DownloadGrant(context.Background(), document.ID, citizenClaims("owner-2"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
