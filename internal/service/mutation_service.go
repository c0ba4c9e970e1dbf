package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/repository"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
)

type mutationStore interface {
	Create(ctx context.Context, mutation *models.Mutation) error
	GetByID(ctx context.Context, id string) (*models.Mutation, error)
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
	List(ctx context.Context, filter models.MutationFilter) ([]models.Mutation, error)
	Approve(ctx context.Context, params repository.ApproveMutationParams) error
	Reject(ctx context.Context, params repository.RejectMutationParams) error
	Cancel(ctx context.Context, id string, at time.Time) error
}

type mutationPropertyStore interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
}

type mutationUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CertificateIssuer schedules certificate rendering for approved mutations.
type CertificateIssuer interface {
	IssueAsync(mutation *models.Mutation) error
}

// FeeSchedule holds the statutory rates applied on approval.
type FeeSchedule struct {
	StampDutyRate       float64
	RegistrationFeeRate float64
}

// MutationService drives the ownership-transfer workflow. Every request is
// born pending; approve and reject are terminal and stamped exactly once.
type MutationService struct {
	mutations  mutationStore
	properties mutationPropertyStore
	users      mutationUserStore
	audit      auditWriter
	issuer     CertificateIssuer
	fees       FeeSchedule
	logger     *zap.Logger
}

// NewMutationService constructs a MutationService.
func NewMutationService(mutations mutationStore, properties mutationPropertyStore, users mutationUserStore, audit auditWriter, issuer CertificateIssuer, fees FeeSchedule, logger *zap.Logger) *MutationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fees.StampDutyRate <= 0 {
		fees.StampDutyRate = 0.05
	}
	if fees.RegistrationFeeRate <= 0 {
		fees.RegistrationFeeRate = 0.01
	}
	return &MutationService{
		mutations:  mutations,
		properties: properties,
		users:      users,
		audit:      audit,
		issuer:     issuer,
		fees:       fees,
		logger:     logger,
	}
}

// Request registers a new transfer request. The current owner of the property
// is captured as previous_owner_id and never recomputed afterwards.
func (s *MutationService) Request(ctx context.Context, req dto.CreateMutationRequest, actor *models.JWTClaims) (*models.Mutation, error) {
	if req.PropertyID == "" || req.NewOwnerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "property_id and new_owner_id are required")
	}
	if !models.ValidMutationReason(req.Reason) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unrecognised mutation reason %q", req.Reason))
	}
	reasonDetail := strings.TrimSpace(req.ReasonDetail)
	if req.Reason == models.MutationReasonOther && reasonDetail == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason_detail is required when reason is Other")
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}

	if actor.Role != models.RoleAdmin && property.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the current owner may request a transfer")
	}
	if property.OwnerID == req.NewOwnerID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "new owner is already the current owner")
	}

	if _, err := s.users.FindByID(ctx, req.NewOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "new owner account does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load new owner")
	}

	transactionID, err := s.generateTransactionID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate transaction id")
	}

	mutation := &models.Mutation{
		TransactionID:   transactionID,
		PropertyID:      property.ID,
		PreviousOwnerID: property.OwnerID,
		NewOwnerID:      req.NewOwnerID,
		Reason:          req.Reason,
		Status:          models.MutationStatusPending,
		RequestedBy:     actor.UserID,
	}
	if reasonDetail != "" {
		mutation.ReasonDetail = &reasonDetail
	}

	if err := s.mutations.Create(ctx, mutation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mutation")
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionMutationCreate, mutation.ID, map[string]interface{}{
		"transaction_id": mutation.TransactionID,
		"property_id":    mutation.PropertyID,
		"new_owner_id":   mutation.NewOwnerID,
	})
	s.logger.Info("mutation requested",
		zap.String("mutation_id", mutation.ID),
		zap.String("transaction_id", mutation.TransactionID),
		zap.String("property_id", mutation.PropertyID),
	)
	return mutation, nil
}

// Get loads a single mutation, enforcing that citizens only see their own.
func (s *MutationService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Mutation, error) {
	mutation, err := s.mutations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mutation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mutation")
	}
	if actor.Role != models.RoleAdmin && !involvesUser(mutation, actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a party to this mutation")
	}
	return mutation, nil
}

// List returns mutations visible to the actor, newest first. Admins see the
// whole registry; citizens see requests they are a party to.
func (s *MutationService) List(ctx context.Context, query dto.MutationQuery, actor *models.JWTClaims) ([]models.Mutation, models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	filter := models.MutationFilter{
		Status:     query.Status,
		PropertyID: query.PropertyID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if actor.Role != models.RoleAdmin {
		filter.OwnerID = actor.UserID
	}

	mutations, err := s.mutations.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mutations")
	}
	pagination := models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(mutations)}
	return mutations, pagination, nil
}

// Approve performs the terminal approved transition: fees are derived from
// the declared property value, the verification hash and e-registry number
// are stamped, and ownership transfers atomically with the status change.
func (s *MutationService) Approve(ctx context.Context, id string, req dto.ApproveMutationRequest, reviewer *models.JWTClaims) (*models.Mutation, error) {
	if req.PropertyValue <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "property_value must be a positive amount")
	}

	mutation, err := s.mutations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mutation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mutation")
	}
	if mutation.Status != models.MutationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("mutation is already %s", mutation.Status))
	}

	now := time.Now().UTC()
	stampDuty := roundMoney(req.PropertyValue * s.fees.StampDutyRate)
	registrationFee := roundMoney(req.PropertyValue * s.fees.RegistrationFeeRate)
	verificationHash := verificationHashFor(mutation, models.MutationStatusApproved)
	eRegistryNumber, err := s.generateERegistryNumber(now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate e-registry number")
	}

	err = s.mutations.Approve(ctx, repository.ApproveMutationParams{
		ID:               mutation.ID,
		PropertyID:       mutation.PropertyID,
		PreviousOwnerID:  mutation.PreviousOwnerID,
		NewOwnerID:       mutation.NewOwnerID,
		ReviewedBy:       reviewer.UserID,
		ReviewedAt:       now,
		StampDuty:        stampDuty,
		RegistrationFee:  registrationFee,
		VerificationHash: verificationHash,
		ERegistryNumber:  eRegistryNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "mutation already reviewed")
		case errors.Is(err, repository.ErrOwnerChanged):
			return nil, appErrors.Clone(appErrors.ErrConflict, "property owner changed since the request was made")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve mutation")
		}
	}

	mutation.Status = models.MutationStatusApproved
	mutation.ReviewedBy = &reviewer.UserID
	mutation.ReviewedAt = &now
	mutation.ApprovedAt = &now
	mutation.StampDuty = &stampDuty
	mutation.RegistrationFee = &registrationFee
	mutation.VerificationHash = &verificationHash
	mutation.ERegistryNumber = &eRegistryNumber

	if s.issuer != nil {
		if err := s.issuer.IssueAsync(mutation); err != nil {
			s.logger.Warn("failed to schedule certificate rendering",
				zap.String("mutation_id", mutation.ID), zap.Error(err))
		}
	}

	s.emitAudit(ctx, reviewer.UserID, models.AuditActionMutationReview, mutation.ID, map[string]interface{}{
		"decision":          "approved",
		"stamp_duty":        stampDuty,
		"registration_fee":  registrationFee,
		"e_registry_number": eRegistryNumber,
	})
	s.logger.Info("mutation approved",
		zap.String("mutation_id", mutation.ID),
		zap.String("e_registry_number", eRegistryNumber),
	)
	return mutation, nil
}

// Reject performs the terminal rejected transition with a mandatory reason.
func (s *MutationService) Reject(ctx context.Context, id string, req dto.RejectMutationRequest, reviewer *models.JWTClaims) (*models.Mutation, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	mutation, err := s.mutations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mutation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mutation")
	}
	if mutation.Status != models.MutationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("mutation is already %s", mutation.Status))
	}

	now := time.Now().UTC()
	verificationHash := verificationHashFor(mutation, models.MutationStatusRejected)

	err = s.mutations.Reject(ctx, repository.RejectMutationParams{
		ID:               mutation.ID,
		ReviewedBy:       reviewer.UserID,
		ReviewedAt:       now,
		RejectionReason:  reason,
		VerificationHash: verificationHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "mutation already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject mutation")
	}

	mutation.Status = models.MutationStatusRejected
	mutation.ReviewedBy = &reviewer.UserID
	mutation.ReviewedAt = &now
	mutation.RejectedAt = &now
	mutation.RejectionReason = &reason
	mutation.VerificationHash = &verificationHash

	s.emitAudit(ctx, reviewer.UserID, models.AuditActionMutationReview, mutation.ID, map[string]interface{}{
		"decision": "rejected",
		"reason":   reason,
	})
	s.logger.Info("mutation rejected", zap.String("mutation_id", mutation.ID))
	return mutation, nil
}

// Cancel withdraws a pending request. Only the requester (or an admin) may
// cancel, and only while the request is still pending.
func (s *MutationService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) error {
	mutation, err := s.mutations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mutation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mutation")
	}
	if actor.Role != models.RoleAdmin && mutation.RequestedBy != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the requester may cancel")
	}

	if err := s.mutations.Cancel(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return appErrors.Clone(appErrors.ErrInvalidState, "only pending mutations can be cancelled")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel mutation")
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionMutationCancel, mutation.ID, map[string]interface{}{
		"transaction_id": mutation.TransactionID,
	})
	return nil
}

func (s *MutationService) emitAudit(ctx context.Context, userID, action, resourceID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "mutation",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record mutation audit log", zap.Error(err))
	}
}

// generateTransactionID allocates a MUT-NNNNN identifier, retrying on the
// rare collision.
func (s *MutationService) generateTransactionID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(100000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("MUT-%05d", n.Int64())
		taken, err := s.mutations.ExistsByTransactionID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("transaction id space exhausted after retries")
}

func (s *MutationService) generateERegistryNumber(at time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EREG/%05d/%d", n.Int64(), at.Year()), nil
}

// verificationHashFor derives the tamper-evident digest stamped on terminal
// transitions and recomputable by anyone holding the public record.
func verificationHashFor(m *models.Mutation, status models.MutationStatus) string {
	payload := fmt.Sprintf("%s-%s-%s-%s-%s", m.ID, m.PropertyID, m.PreviousOwnerID, m.NewOwnerID, status)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func involvesUser(m *models.Mutation, userID string) bool {
	return m.RequestedBy == userID || m.PreviousOwnerID == userID || m.NewOwnerID == userID
}

func roundMoney(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
