package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/dto"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/pkg/export"
)

func (s *propertyStoreStub) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.properties), nil
}

func (s *documentStoreStub) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents), nil
}

func (s *mutationStoreStub) CountByStatus(ctx context.Context) (map[models.MutationStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[models.MutationStatus]int{}
	for _, m := range s.mutations {
		if m.CancelledAt != nil {
			continue
		}
		counts[m.Status]++
	}
	return counts, nil
}

func TestReportSummaryZeroFillsStatuses(t *testing.T) {
	properties := newPropertyStoreStub()
	properties.add(&models.Property{ID: "prop-1", OwnerID: "owner-1"})
	documents := newDocumentStoreStub()
	mutations := newMutationStoreStub(properties)
	mutations.mutations["mut-1"] = &models.Mutation{ID: "mut-1", Status: models.MutationStatusApproved}

	svc := NewReportService(properties, documents, mutations, export.NewCSVExporter(), nil)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProperties)
	assert.Equal(t, 0, summary.TotalDocuments)
	assert.Equal(t, 1, summary.MutationsByStatus["approved"])
	assert.Equal(t, 0, summary.MutationsByStatus["pending"])
	assert.Equal(t, 0, summary.MutationsByStatus["rejected"])
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestReportExportIncludesEveryRow(t *testing.T) {
	properties := newPropertyStoreStub()
	mutations := newMutationStoreStub(properties)
	for i := 0; i < 300; i++ {
		id := fmt.Sprintf("mut-%03d", i)
		mutations.mutations[id] = &models.Mutation{
			ID: id, TransactionID: fmt.Sprintf("MUT-%05d", i), PropertyID: "prop-1",
			PreviousOwnerID: "owner-1", NewOwnerID: "owner-2",
			Reason: models.MutationReasonSale, Status: models.MutationStatusPending,
		}
	}

	svc := NewReportService(properties, newDocumentStoreStub(), mutations, export.NewCSVExporter(), nil)
	data, _, err := svc.ExportMutationsCSV(context.Background(), dto.MutationQuery{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 301, "the register export must not page-clamp")
}

func TestReportExportMutationsCSV(t *testing.T) {
	properties := newPropertyStoreStub()
	mutations := newMutationStoreStub(properties)
	duty := 50000.0
	reviewed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mutations.mutations["mut-1"] = &models.Mutation{
		ID: "mut-1", TransactionID: "MUT-00042", PropertyID: "prop-1",
		PreviousOwnerID: "owner-1", NewOwnerID: "owner-2",
		Reason: models.MutationReasonSale, Status: models.MutationStatusApproved,
		CreatedAt: reviewed.Add(-48 * time.Hour), ReviewedAt: &reviewed, StampDuty: &duty,
	}

	svc := NewReportService(properties, newDocumentStoreStub(), mutations, export.NewCSVExporter(), nil)
	data, filename, err := svc.ExportMutationsCSV(context.Background(), dto.MutationQuery{})
	require.NoError(t, err)

	assert.Regexp(t, `^mutations-\d{8}-\d{6}\.csv$`, filename)
	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "transaction_id")
	assert.Contains(t, lines[1], "MUT-00042")
	assert.Contains(t, lines[1], "50000.00")
	assert.Contains(t, lines[1], "2026-03-14T10:00:00Z")
}
