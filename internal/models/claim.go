package models

import "time"

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCollected ClaimStatus = "collected"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimRejected, ClaimCollected:
		return true
	}
	return false
}

// ClaimAction names a lifecycle transition.
type ClaimAction string

const (
	ActionSubmit      ClaimAction = "submit"
	ActionApprove     ClaimAction = "approve"
	ActionReject      ClaimAction = "reject"
	ActionCollect     ClaimAction = "collect"
	ActionCancel      ClaimAction = "cancel"
	ActionBulkApprove ClaimAction = "bulk_approve"
)

// Claim is a student's assertion of ownership over a lost item.
type Claim struct {
	ID                  string      `db:"id" json:"id"`
	LostItemID          string      `db:"lost_id_id" json:"lost_id_id"`
	ClaimantID          string      `db:"claimant_student_id" json:"claimant_student_id"`
	VerificationDetails string      `db:"verification_details" json:"verification_details"`
	Status              ClaimStatus `db:"status" json:"status"`
	ClaimDate           time.Time   `db:"claim_date" json:"claim_date"`
	AdminNotes          *string     `db:"admin_notes" json:"admin_notes,omitempty"`
	ProcessedBy         *string     `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt         *time.Time  `db:"processed_at" json:"processed_at,omitempty"`
	CollectionDate      *time.Time  `db:"collection_date" json:"collection_date,omitempty"`
}

// ClaimDetail joins a claim with its item, claimant and processing admin.
type ClaimDetail struct {
	Claim
	LostStudentName   string         `db:"lost_student_name" json:"lost_student_name"`
	LostStudentID     string         `db:"lost_student_id" json:"lost_student_id"`
	IDType            IDType         `db:"id_type" json:"id_type"`
	FoundDate         time.Time      `db:"found_date" json:"found_date"`
	FoundLocation     string         `db:"found_location" json:"found_location"`
	ItemDescription   *string        `db:"item_description" json:"item_description,omitempty"`
	ItemStatus        LostItemStatus `db:"item_status" json:"item_status"`
	ImageFilename     *string        `db:"image_filename" json:"-"`
	ImageURL          *string        `db:"-" json:"image_url,omitempty"`
	ClaimantFirstName string         `db:"claimant_first_name" json:"claimant_first_name"`
	ClaimantLastName  string         `db:"claimant_last_name" json:"claimant_last_name"`
	ClaimantEmail     string         `db:"claimant_email" json:"claimant_email"`
	ClaimantPhone     string         `db:"claimant_phone" json:"claimant_phone"`
	ClaimantStudentNo string         `db:"claimant_student_number" json:"claimant_student_number"`
	ProcessedByName   *string        `db:"processed_by_name" json:"processed_by_name,omitempty"`
}

// ClaimHistoryEntry is a compact claim row shown on a lost item's detail page.
type ClaimHistoryEntry struct {
	ID                string      `db:"id" json:"id"`
	Status            ClaimStatus `db:"status" json:"status"`
	ClaimDate         time.Time   `db:"claim_date" json:"claim_date"`
	ProcessedAt       *time.Time  `db:"processed_at" json:"processed_at,omitempty"`
	AdminNotes        *string     `db:"admin_notes" json:"admin_notes,omitempty"`
	ClaimantName      string      `db:"claimant_name" json:"claimant_name"`
	ClaimantStudentNo string      `db:"claimant_student_number" json:"claimant_student_number"`
}

// Sortable columns for admin claim listings.
const (
	ClaimSortClaimDate       = "claim_date"
	ClaimSortStatus          = "status"
	ClaimSortLostStudentName = "lost_student_name"
	ClaimSortFoundDate       = "found_date"
)

// ClaimFilter captures list criteria for claims. ClaimantID scopes to one student.
type ClaimFilter struct {
	ClaimantID string
	Status     *ClaimStatus
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}
