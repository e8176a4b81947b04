package dto

import "github.com/noah-isme/lostid-api/internal/models"

// SubmitClaimRequest captures POST /users/claims payload.
type SubmitClaimRequest struct {
	LostItemID          string `json:"lost_id_id" validate:"required,uuid"`
	VerificationDetails string `json:"verification_details" validate:"required,min=10,max=2000"`
}

// SubmitClaimResponse is returned after a claim is created.
type SubmitClaimResponse struct {
	ClaimID string `json:"claim_id"`
}

// ClaimActionRequest carries optional admin notes for approve, reject and collect.
type ClaimActionRequest struct {
	AdminNotes *string `json:"admin_notes" validate:"omitempty,max=1000"`
}

// BulkApproveRequest approves several pending claims at once.
type BulkApproveRequest struct {
	ClaimIDs   []string `json:"claim_ids" validate:"required,min=1,max=100,dive,uuid"`
	AdminNotes *string  `json:"admin_notes" validate:"omitempty,max=1000"`
}

// BulkApproveResponse reports what a bulk approval changed.
type BulkApproveResponse struct {
	Approved int      `json:"approved"`
	ClaimIDs []string `json:"claim_ids"`
}

// ClaimTransitionResponse echoes the claim after a transition along with the item status it left behind.
type ClaimTransitionResponse struct {
	Claim      models.Claim          `json:"claim"`
	ItemStatus models.LostItemStatus `json:"lost_id_status,omitempty"`
}
