package models

import "time"

// Audit actions written by the claim engine and admin lost-ID mutations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionClaimSubmit    = "CLAIM_SUBMIT"
	AuditActionClaimApprove   = "CLAIM_APPROVE"
	AuditActionClaimReject    = "CLAIM_REJECT"
	AuditActionClaimCollect   = "CLAIM_COLLECT"
	AuditActionClaimCancel    = "CLAIM_CANCEL"
	AuditActionClaimBulk      = "CLAIM_BULK_APPROVE"
	AuditActionLostIDCreate   = "LOST_ID_CREATE"
	AuditActionLostIDUpdate   = "LOST_ID_UPDATE"
	AuditActionLostIDDelete   = "LOST_ID_DELETE"
	AuditActionExport         = "EXPORT"
	AuditActionLogout         = "LOGOUT"
	AuditResourceClaim        = "claim"
	AuditResourceLostID       = "lost_id"
	AuditResourceAuthenticate = "auth"
	AuditResourceExport       = "export"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
