package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
)

type verificationPropertyStore interface {
	GetBySurveyNumber(ctx context.Context, surveyNumber string) (*models.Property, error)
}

type verificationDocumentStore interface {
	FindByHash(ctx context.Context, hash string) (*models.Document, error)
}

type verificationMutationStore interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Mutation, error)
}

// VerificationService serves the public, read-only lookup surface. Lookups
// never mutate registry state; results are cached briefly in Redis.
type VerificationService struct {
	properties verificationPropertyStore
	documents  verificationDocumentStore
	mutations  verificationMutationStore
	cache      *redis.Client
	cacheTTL   time.Duration
	audit      auditWriter
	logger     *zap.Logger
}

// NewVerificationService constructs a VerificationService. A nil cache
// client disables caching.
func NewVerificationService(properties verificationPropertyStore, documents verificationDocumentStore, mutations verificationMutationStore, cache *redis.Client, cacheTTL time.Duration, audit auditWriter, logger *zap.Logger) *VerificationService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		properties: properties,
		documents:  documents,
		mutations:  mutations,
		cache:      cache,
		cacheTTL:   cacheTTL,
		audit:      audit,
		logger:     logger,
	}
}

// VerifyProperty looks up a parcel by survey number.
func (s *VerificationService) VerifyProperty(ctx context.Context, surveyNumber string) (*dto.PropertyVerification, error) {
	surveyNumber = strings.TrimSpace(surveyNumber)
	if surveyNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "survey number is required")
	}

	cacheKey := "verify:property:" + surveyNumber
	var cached dto.PropertyVerification
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	property, err := s.properties.GetBySurveyNumber(ctx, surveyNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.emitAudit(ctx, "property", surveyNumber, false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no property registered under this survey number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify property")
	}

	result := &dto.PropertyVerification{
		Verified:     true,
		SurveyNumber: property.SurveyNumber,
		Address:      property.Address,
		AreaSqFt:     property.AreaSqFt,
		OwnerID:      property.OwnerID,
		TitleHash:    property.TitleHash,
		RegisteredAt: property.CreatedAt,
	}
	s.cacheSet(ctx, cacheKey, result)
	s.emitAudit(ctx, "property", surveyNumber, true)
	return result, nil
}

// VerifyDocument looks up a stored document by its exact content hash.
func (s *VerificationService) VerifyDocument(ctx context.Context, hash string) (*dto.DocumentVerification, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if len(hash) != 64 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content hash must be 64 hex characters")
	}

	cacheKey := "verify:document:" + hash
	var cached dto.DocumentVerification
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	document, err := s.documents.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.emitAudit(ctx, "document", hash, false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no document matches this hash")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify document")
	}

	result := &dto.DocumentVerification{
		Verified:    true,
		DocumentID:  document.ID,
		PropertyID:  document.PropertyID,
		Type:        document.Type,
		ContentHash: document.ContentHash,
		UploadedAt:  document.UploadedAt,
	}
	s.cacheSet(ctx, cacheKey, result)
	s.emitAudit(ctx, "document", hash, true)
	return result, nil
}

// VerifyMutation looks up a transfer request by its public transaction id.
func (s *VerificationService) VerifyMutation(ctx context.Context, transactionID string) (*dto.MutationVerification, error) {
	transactionID = strings.ToUpper(strings.TrimSpace(transactionID))
	if transactionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "transaction id is required")
	}

	cacheKey := "verify:mutation:" + transactionID
	var cached dto.MutationVerification
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	mutation, err := s.mutations.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.emitAudit(ctx, "mutation", transactionID, false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no mutation matches this transaction id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify mutation")
	}

	result := &dto.MutationVerification{
		Verified:         true,
		TransactionID:    mutation.TransactionID,
		PropertyID:       mutation.PropertyID,
		Status:           mutation.Status,
		Reason:           mutation.Reason,
		RequestedAt:      mutation.CreatedAt,
		ReviewedAt:       mutation.ReviewedAt,
		VerificationHash: mutation.VerificationHash,
		ERegistryNumber:  mutation.ERegistryNumber,
	}
	// Pending requests stay out of the cache so approval shows up immediately.
	if mutation.Status != models.MutationStatusPending {
		s.cacheSet(ctx, cacheKey, result)
	}
	s.emitAudit(ctx, "mutation", transactionID, true)
	return result, nil
}

func (s *VerificationService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("verification cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("verification cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *VerificationService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("verification cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *VerificationService) emitAudit(ctx context.Context, kind, subject string, found bool) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"kind": kind, "subject": subject, "found": found})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		Action:    models.AuditActionVerification,
		Resource:  "verification",
		NewValues: payload,
	}); err != nil {
		s.logger.Warn("failed to record verification audit log", zap.Error(err))
	}
}
