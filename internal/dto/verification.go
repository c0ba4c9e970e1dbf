package dto

import (
	"time"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

// PropertyVerification is the public read-side view of a registered parcel.
// Owner identity is reduced to an opaque id; no contact details leak.
type PropertyVerification struct {
	Verified     bool      `json:"verified"`
	SurveyNumber string    `json:"survey_number"`
	Address      string    `json:"address"`
	AreaSqFt     float64   `json:"area_sqft"`
	OwnerID      string    `json:"owner_id"`
	TitleHash    *string   `json:"title_hash,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// DocumentVerification confirms a stored document by exact content hash.
type DocumentVerification struct {
	Verified    bool                `json:"verified"`
	DocumentID  string              `json:"document_id"`
	PropertyID  string              `json:"property_id"`
	Type        models.DocumentType `json:"type"`
	ContentHash string              `json:"content_hash"`
	UploadedAt  time.Time           `json:"uploaded_at"`
}

// MutationVerification is the public view of a transfer request looked up by
// its transaction id.
type MutationVerification struct {
	Verified         bool                  `json:"verified"`
	TransactionID    string                `json:"transaction_id"`
	PropertyID       string                `json:"property_id"`
	Status           models.MutationStatus `json:"status"`
	Reason           models.MutationReason `json:"reason"`
	RequestedAt      time.Time             `json:"requested_at"`
	ReviewedAt       *time.Time            `json:"reviewed_at,omitempty"`
	VerificationHash *string               `json:"verification_hash,omitempty"`
	ERegistryNumber  *string               `json:"e_registry_number,omitempty"`
}
