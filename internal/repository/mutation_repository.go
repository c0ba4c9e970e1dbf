package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

// Sentinel errors distinguishing why a terminal transition was refused.
var (
	// ErrNotPending means the mutation already left the pending state (or was cancelled).
	ErrNotPending = errors.New("mutation is not pending")
	// ErrOwnerChanged means the property owner no longer matches the owner
	// captured at request time; a concurrent transfer won.
	ErrOwnerChanged = errors.New("property owner changed since request")
)

// MutationRepository persists ownership-transfer requests.
type MutationRepository struct {
	db *sqlx.DB
}

// NewMutationRepository constructs the repository.
func NewMutationRepository(db *sqlx.DB) *MutationRepository {
	return &MutationRepository{db: db}
}

const mutationColumns = `id, transaction_id, property_id, previous_owner_id, new_owner_id,
       reason, reason_detail, status, requested_by, created_at, reviewed_by, reviewed_at,
       approved_at, stamp_duty, registration_fee, verification_hash, e_registry_number,
       certificate_path, rejected_at, rejection_reason, cancelled_at`

// Create inserts a new mutation row.
func (r *MutationRepository) Create(ctx context.Context, mutation *models.Mutation) error {
	if mutation.ID == "" {
		mutation.ID = uuid.NewString()
	}
	if mutation.Status == "" {
		mutation.Status = models.MutationStatusPending
	}
	if mutation.CreatedAt.IsZero() {
		mutation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO mutations
	(id, transaction_id, property_id, previous_owner_id, new_owner_id, reason, reason_detail,
	 status, requested_by, created_at)
	VALUES (:id, :transaction_id, :property_id, :previous_owner_id, :new_owner_id, :reason,
	 :reason_detail, :status, :requested_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mutation); err != nil {
		return fmt.Errorf("create mutation: %w", err)
	}
	return nil
}

// GetByID fetches a mutation by identifier. Cancelled rows are excluded.
func (r *MutationRepository) GetByID(ctx context.Context, id string) (*models.Mutation, error) {
	query := fmt.Sprintf(`SELECT %s FROM mutations WHERE id = $1 AND cancelled_at IS NULL`, mutationColumns)
	var mutation models.Mutation
	if err := r.db.GetContext(ctx, &mutation, query, id); err != nil {
		return nil, err
	}
	return &mutation, nil
}

// GetByTransactionID fetches a mutation by its human-readable id, ignoring case.
func (r *MutationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Mutation, error) {
	query := fmt.Sprintf(`SELECT %s FROM mutations WHERE UPPER(transaction_id) = $1 AND cancelled_at IS NULL`, mutationColumns)
	var mutation models.Mutation
	if err := r.db.GetContext(ctx, &mutation, query, strings.ToUpper(transactionID)); err != nil {
		return nil, err
	}
	return &mutation, nil
}

// ExistsByTransactionID reports whether the human-readable id is taken.
func (r *MutationRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM mutations WHERE transaction_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, transactionID); err != nil {
		return false, fmt.Errorf("check transaction id: %w", err)
	}
	return exists, nil
}

// List returns mutations matching the filter, newest first.
func (r *MutationRepository) List(ctx context.Context, filter models.MutationFilter) ([]models.Mutation, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM mutations", mutationColumns))

	conditions := make([]string, 0, 4)
	if !filter.IncludeCancelled {
		conditions = append(conditions, "cancelled_at IS NULL")
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.PropertyID != "" {
		args = append(args, filter.PropertyID)
		conditions = append(conditions, fmt.Sprintf("property_id = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("(previous_owner_id = $%d OR new_owner_id = $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	// The id tie-break only stabilizes rows sharing a created_at instant;
	// ids are random UUIDs, so it does not reproduce insertion order.
	builder.WriteString(" ORDER BY created_at DESC, id")

	// Interactive listings clamp their page size in the service layer; the
	// CSV export legitimately asks for thousands of rows in one go.
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 10000 {
		limit = 10000
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var mutations []models.Mutation
	if err := r.db.SelectContext(ctx, &mutations, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	return mutations, nil
}

// ApproveMutationParams groups approval metadata stamped on the terminal transition.
type ApproveMutationParams struct {
	ID               string
	PropertyID       string
	PreviousOwnerID  string
	NewOwnerID       string
	ReviewedBy       string
	ReviewedAt       time.Time
	StampDuty        float64
	RegistrationFee  float64
	VerificationHash string
	ERegistryNumber  string
}

// Approve performs the terminal approved transition and the ownership
// transfer in one transaction. The status update is a compare-and-swap on
// pending; the owner update is conditional on the owner captured at request
// time. Either guard failing rolls the whole transition back.
func (r *MutationRepository) Approve(ctx context.Context, params ApproveMutationParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const statusQuery = `UPDATE mutations SET
		status = $1, reviewed_by = $2, reviewed_at = $3, approved_at = $3,
		stamp_duty = $4, registration_fee = $5, verification_hash = $6, e_registry_number = $7
	WHERE id = $8 AND status = $9 AND cancelled_at IS NULL`
	result, err := tx.ExecContext(ctx, statusQuery,
		models.MutationStatusApproved, params.ReviewedBy, params.ReviewedAt,
		params.StampDuty, params.RegistrationFee, params.VerificationHash, params.ERegistryNumber,
		params.ID, models.MutationStatusPending,
	)
	if err != nil {
		return fmt.Errorf("approve mutation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check approve rows: %w", err)
	}
	if rows == 0 {
		return ErrNotPending
	}

	const ownerQuery = `UPDATE properties SET owner_id = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4`
	result, err = tx.ExecContext(ctx, ownerQuery,
		params.NewOwnerID, params.ReviewedAt, params.PropertyID, params.PreviousOwnerID,
	)
	if err != nil {
		return fmt.Errorf("transfer owner: %w", err)
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transfer rows: %w", err)
	}
	if rows == 0 {
		return ErrOwnerChanged
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve tx: %w", err)
	}
	return nil
}

// RejectMutationParams groups rejection metadata.
type RejectMutationParams struct {
	ID               string
	ReviewedBy       string
	ReviewedAt       time.Time
	RejectionReason  string
	VerificationHash string
}

// Reject performs the terminal rejected transition via a compare-and-swap on pending.
func (r *MutationRepository) Reject(ctx context.Context, params RejectMutationParams) error {
	const query = `UPDATE mutations SET
		status = $1, reviewed_by = $2, reviewed_at = $3, rejected_at = $3,
		rejection_reason = $4, verification_hash = $5
	WHERE id = $6 AND status = $7 AND cancelled_at IS NULL`
	result, err := r.db.ExecContext(ctx, query,
		models.MutationStatusRejected, params.ReviewedBy, params.ReviewedAt,
		params.RejectionReason, params.VerificationHash,
		params.ID, models.MutationStatusPending,
	)
	if err != nil {
		return fmt.Errorf("reject mutation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reject rows: %w", err)
	}
	if rows == 0 {
		return ErrNotPending
	}
	return nil
}

// Cancel soft-marks a pending mutation as cancelled.
func (r *MutationRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE mutations SET cancelled_at = $1
	WHERE id = $2 AND status = $3 AND cancelled_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, at, id, models.MutationStatusPending)
	if err != nil {
		return fmt.Errorf("cancel mutation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check cancel rows: %w", err)
	}
	if rows == 0 {
		return ErrNotPending
	}
	return nil
}

// SetCertificatePath records where the rendered certificate artifact lives.
func (r *MutationRepository) SetCertificatePath(ctx context.Context, id, path string) error {
	const query = `UPDATE mutations SET certificate_path = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("set certificate path: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check certificate rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns mutation totals grouped by status, excluding cancelled rows.
func (r *MutationRepository) CountByStatus(ctx context.Context) (map[models.MutationStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM mutations WHERE cancelled_at IS NULL GROUP BY status`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count mutations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[models.MutationStatus]int)
	for rows.Next() {
		var status models.MutationStatus
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan mutation count: %w", err)
		}
		counts[status] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutation counts: %w", err)
	}
	return counts, nil
}
