package models

import "time"

// MutationStatus captures workflow states for ownership transfers. The state
// machine is one-way: pending may move to approved or rejected, never back.
type MutationStatus string

const (
	MutationStatusPending  MutationStatus = "pending"
	MutationStatusApproved MutationStatus = "approved"
	MutationStatusRejected MutationStatus = "rejected"
)

// MutationReason enumerates transfer categories accepted by the workflow.
type MutationReason string

const (
	MutationReasonSale            MutationReason = "Sale"
	MutationReasonInheritance     MutationReason = "Inheritance"
	MutationReasonGiftDeed        MutationReason = "Gift Deed"
	MutationReasonFamilyPartition MutationReason = "Family Partition"
	MutationReasonCourtOrder      MutationReason = "Court Order"
	MutationReasonOther           MutationReason = "Other"
)

// ValidMutationReason reports whether the reason is a recognised category.
func ValidMutationReason(r MutationReason) bool {
	switch r {
	case MutationReasonSale, MutationReasonInheritance, MutationReasonGiftDeed,
		MutationReasonFamilyPartition, MutationReasonCourtOrder, MutationReasonOther:
		return true
	}
	return false
}

// Mutation is an ownership-transfer request against a property.
// PreviousOwnerID is captured when the request is created and is never
// recomputed; approval transfers ownership only if the property owner still
// matches it. Review fields are set exactly once on the terminal transition.
type Mutation struct {
	ID              string         `db:"id" json:"id"`
	TransactionID   string         `db:"transaction_id" json:"transaction_id"`
	PropertyID      string         `db:"property_id" json:"property_id"`
	PreviousOwnerID string         `db:"previous_owner_id" json:"previous_owner_id"`
	NewOwnerID      string         `db:"new_owner_id" json:"new_owner_id"`
	Reason          MutationReason `db:"reason" json:"reason"`
	ReasonDetail    *string        `db:"reason_detail" json:"reason_detail,omitempty"`
	Status          MutationStatus `db:"status" json:"status"`
	RequestedBy     string         `db:"requested_by" json:"requested_by"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`

	ReviewedBy *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`

	// Populated only when status is approved.
	ApprovedAt       *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	StampDuty        *float64   `db:"stamp_duty" json:"stamp_duty,omitempty"`
	RegistrationFee  *float64   `db:"registration_fee" json:"registration_fee,omitempty"`
	VerificationHash *string    `db:"verification_hash" json:"verification_hash,omitempty"`
	ERegistryNumber  *string    `db:"e_registry_number" json:"e_registry_number,omitempty"`
	CertificatePath  *string    `db:"certificate_path" json:"-"`

	// Populated only when status is rejected.
	RejectedAt      *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`

	// Soft cancellation marker; cancelled requests are hidden from reads.
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// MutationFilter constrains listing queries.
type MutationFilter struct {
	Status           []MutationStatus
	PropertyID       string
	OwnerID          string
	IncludeCancelled bool
	Limit            int
	Offset           int
}
