package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/jobs"
)

type certificateMutationStore interface {
	GetByID(ctx context.Context, id string) (*models.Mutation, error)
	SetCertificatePath(ctx context.Context, id, path string) error
}

type certificatePropertyStore interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
}

type certificateUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type certificateRenderer interface {
	RenderCertificate(title string, fields [][2]string, footer string) ([]byte, error)
}

// CertificateDownload aggregates resolved download data.
type CertificateDownload struct {
	File     *os.File
	Filename string
}

// CertificateService issues mutation certificates. Rendering is asynchronous:
// approval enqueues a job and the worker writes the PDF behind the scenes.
type CertificateService struct {
	mutations certificateMutationStore
	queue     jobDispatcher
	storage   blobStorage
	logger    *zap.Logger
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(mutations certificateMutationStore, queue jobDispatcher, storage blobStorage, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{mutations: mutations, queue: queue, storage: storage, logger: logger}
}

// IssueAsync schedules certificate rendering for an approved mutation.
func (s *CertificateService) IssueAsync(mutation *models.Mutation) error {
	if s.queue == nil {
		return fmt.Errorf("certificate queue not configured")
	}
	return s.queue.Enqueue(jobs.Job{ID: mutation.ID, Type: "mutation_certificate"})
}

// Download opens the rendered certificate for an approved mutation. Only a
// party to the mutation (or an admin) may fetch it.
func (s *CertificateService) Download(ctx context.Context, mutationID string, actor *models.JWTClaims) (*CertificateDownload, error) {
	mutation, err := s.mutations.GetByID(ctx, mutationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mutation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mutation")
	}
	if actor.Role != models.RoleAdmin && !involvesUser(mutation, actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a party to this mutation")
	}
	if mutation.Status != models.MutationStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "certificate is only issued for approved mutations")
	}
	if mutation.CertificatePath == nil || *mutation.CertificatePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate is still being generated")
	}

	file, err := s.storage.Open(*mutation.CertificatePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open certificate")
	}
	return &CertificateDownload{
		File:     file,
		Filename: fmt.Sprintf("%s.pdf", mutation.TransactionID),
	}, nil
}

// CertificateWorker bridges queue jobs to the PDF renderer.
type CertificateWorker struct {
	mutations  certificateMutationStore
	properties certificatePropertyStore
	users      certificateUserStore
	renderer   certificateRenderer
	storage    blobStorage
	logger     *zap.Logger
}

// NewCertificateWorker constructs a worker.
func NewCertificateWorker(mutations certificateMutationStore, properties certificatePropertyStore, users certificateUserStore, renderer certificateRenderer, storage blobStorage, logger *zap.Logger) *CertificateWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateWorker{
		mutations:  mutations,
		properties: properties,
		users:      users,
		renderer:   renderer,
		storage:    storage,
		logger:     logger,
	}
}

// Handle renders and stores the certificate for an approved mutation.
func (w *CertificateWorker) Handle(ctx context.Context, job jobs.Job) error {
	mutation, err := w.mutations.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load mutation %s: %w", job.ID, err)
	}
	if mutation.Status != models.MutationStatusApproved {
		// Nothing to render; do not retry.
		w.logger.Warn("certificate job for non-approved mutation",
			zap.String("mutation_id", mutation.ID), zap.String("status", string(mutation.Status)))
		return nil
	}

	property, err := w.properties.GetByID(ctx, mutation.PropertyID)
	if err != nil {
		return fmt.Errorf("load property %s: %w", mutation.PropertyID, err)
	}

	fields := [][2]string{
		{"Transaction ID", mutation.TransactionID},
		{"Survey Number", property.SurveyNumber},
		{"Property Address", property.Address},
		{"Previous Owner", w.ownerName(ctx, mutation.PreviousOwnerID)},
		{"New Owner", w.ownerName(ctx, mutation.NewOwnerID)},
		{"Transfer Reason", string(mutation.Reason)},
	}
	if mutation.StampDuty != nil {
		fields = append(fields, [2]string{"Stamp Duty", fmt.Sprintf("Rs. %.2f", *mutation.StampDuty)})
	}
	if mutation.RegistrationFee != nil {
		fields = append(fields, [2]string{"Registration Fee", fmt.Sprintf("Rs. %.2f", *mutation.RegistrationFee)})
	}
	if mutation.ERegistryNumber != nil {
		fields = append(fields, [2]string{"E-Registry Number", *mutation.ERegistryNumber})
	}
	if mutation.ApprovedAt != nil {
		fields = append(fields, [2]string{"Approved On", mutation.ApprovedAt.Format("02 Jan 2006")})
	}

	footer := "This certificate is system generated."
	if mutation.VerificationHash != nil {
		footer = fmt.Sprintf("Verification hash: %s\n%s", *mutation.VerificationHash, footer)
	}

	pdfBytes, err := w.renderer.RenderCertificate("Mutation Certificate", fields, footer)
	if err != nil {
		return fmt.Errorf("render certificate %s: %w", mutation.ID, err)
	}

	relPath := filepath.Join(time.Now().UTC().Format("2006"), mutation.TransactionID+".pdf")
	storedPath, err := w.storage.Save(relPath, pdfBytes)
	if err != nil {
		return fmt.Errorf("store certificate %s: %w", mutation.ID, err)
	}
	if err := w.mutations.SetCertificatePath(ctx, mutation.ID, storedPath); err != nil {
		return fmt.Errorf("record certificate path %s: %w", mutation.ID, err)
	}

	w.logger.Info("certificate rendered",
		zap.String("mutation_id", mutation.ID),
		zap.String("path", storedPath),
	)
	return nil
}

func (w *CertificateWorker) ownerName(ctx context.Context, userID string) string {
	if w.users == nil {
		return userID
	}
	user, err := w.users.FindByID(ctx, userID)
	if err != nil {
		return userID
	}
	return user.FullName
}
