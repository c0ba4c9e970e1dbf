package service

import (
	"context"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

// auditWriter is the narrow persistence surface services use to append to
// the audit trail. Failures are logged, never surfaced to callers.
type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}
