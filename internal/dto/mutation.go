package dto

import "github.com/bhoomi-portal/land-registry-api/internal/models"

// CreateMutationRequest payload for requesting an ownership transfer.
type CreateMutationRequest struct {
	PropertyID   string                `json:"property_id"`
	NewOwnerID   string                `json:"new_owner_id"`
	Reason       models.MutationReason `json:"reason"`
	ReasonDetail string                `json:"reason_detail"`
}

// ApproveMutationRequest captures the declared property value used to derive
// stamp duty and registration fee.
type ApproveMutationRequest struct {
	PropertyValue float64 `json:"property_value"`
}

// RejectMutationRequest carries the mandatory rejection reason.
type RejectMutationRequest struct {
	Reason string `json:"reason"`
}

// MutationQuery mirrors supported listing filters.
type MutationQuery struct {
	Status     []models.MutationStatus
	PropertyID string
	Page       int
	PageSize   int
}
