package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	appErrors "github.com/bhoomi-portal/land-registry-api/pkg/errors"
	"github.com/bhoomi-portal/land-registry-api/pkg/export"
)

type reportPropertyStore interface {
	Count(ctx context.Context) (int, error)
}

type reportDocumentStore interface {
	Count(ctx context.Context) (int, error)
}

type reportMutationStore interface {
	CountByStatus(ctx context.Context) (map[models.MutationStatus]int, error)
	List(ctx context.Context, filter models.MutationFilter) ([]models.Mutation, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportService produces registry-wide summaries and CSV exports for the
// administration dashboard.
type ReportService struct {
	properties reportPropertyStore
	documents  reportDocumentStore
	mutations  reportMutationStore
	csv        csvRenderer
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(properties reportPropertyStore, documents reportDocumentStore, mutations reportMutationStore, csv csvRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		properties: properties,
		documents:  documents,
		mutations:  mutations,
		csv:        csv,
		logger:     logger,
	}
}

// Summary aggregates registry totals.
func (s *ReportService) Summary(ctx context.Context) (*dto.SummaryReport, error) {
	totalProperties, err := s.properties.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count properties")
	}
	totalDocuments, err := s.documents.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}
	byStatus, err := s.mutations.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mutations")
	}

	statusCounts := map[string]int{
		string(models.MutationStatusPending):  0,
		string(models.MutationStatusApproved): 0,
		string(models.MutationStatusRejected): 0,
	}
	for status, count := range byStatus {
		statusCounts[string(status)] = count
	}

	return &dto.SummaryReport{
		TotalProperties:   totalProperties,
		TotalDocuments:    totalDocuments,
		MutationsByStatus: statusCounts,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// ExportMutationsCSV renders the mutation register as CSV bytes.
func (s *ReportService) ExportMutationsCSV(ctx context.Context, query dto.MutationQuery) ([]byte, string, error) {
	limit := query.PageSize
	if limit < 1 || limit > 10000 {
		limit = 1000
	}
	mutations, err := s.mutations.List(ctx, models.MutationFilter{
		Status:     query.Status,
		PropertyID: query.PropertyID,
		Limit:      limit,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mutations")
	}

	headers := []string{"transaction_id", "property_id", "previous_owner_id", "new_owner_id", "reason", "status", "requested_at", "reviewed_at", "stamp_duty", "registration_fee", "e_registry_number"}
	rows := make([]map[string]string, 0, len(mutations))
	for _, m := range mutations {
		row := map[string]string{
			"transaction_id":    m.TransactionID,
			"property_id":       m.PropertyID,
			"previous_owner_id": m.PreviousOwnerID,
			"new_owner_id":      m.NewOwnerID,
			"reason":            string(m.Reason),
			"status":            string(m.Status),
			"requested_at":      m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReviewedAt != nil {
			row["reviewed_at"] = m.ReviewedAt.Format(time.RFC3339)
		}
		if m.StampDuty != nil {
			row["stamp_duty"] = fmt.Sprintf("%.2f", *m.StampDuty)
		}
		if m.RegistrationFee != nil {
			row["registration_fee"] = fmt.Sprintf("%.2f", *m.RegistrationFee)
		}
		if m.ERegistryNumber != nil {
			row["e_registry_number"] = *m.ERegistryNumber
		}
		rows = append(rows, row)
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("mutations-%s.csv", time.Now().UTC().Format("20060102-150405"))
	return data, filename, nil
}
