package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

const (
	minVerificationLength = 10
	maxAdminNotesLength   = 1000

	defaultApproveNote     = "Claim approved - ID ready for collection"
	defaultCollectNote     = "ID successfully collected by verified owner"
	defaultBulkApproveNote = "Bulk approved - IDs ready for collection"
)

// claimTransition is one row of the lifecycle table. An empty claimTo deletes the claim;
// an empty itemTo leaves the item untouched.
type claimTransition struct {
	claimFrom models.ClaimStatus
	claimTo   models.ClaimStatus
	itemFrom  models.LostItemStatus
	itemTo    models.LostItemStatus
}

var claimTransitions = map[models.ClaimAction]claimTransition{
	models.ActionApprove:     {claimFrom: models.ClaimPending, claimTo: models.ClaimApproved},
	models.ActionBulkApprove: {claimFrom: models.ClaimPending, claimTo: models.ClaimApproved},
	models.ActionReject:      {claimFrom: models.ClaimPending, claimTo: models.ClaimRejected, itemFrom: models.LostItemClaimed, itemTo: models.LostItemAvailable},
	models.ActionCollect:     {claimFrom: models.ClaimApproved, claimTo: models.ClaimCollected, itemFrom: models.LostItemClaimed, itemTo: models.LostItemReturned},
	models.ActionCancel:      {claimFrom: models.ClaimPending, itemFrom: models.LostItemClaimed, itemTo: models.LostItemAvailable},
}

func (t claimTransition) touchesItem() bool { return t.itemTo != "" }

// checkSubmit decides whether a student may claim item. A repeat claim by the same
// student is reported as a duplicate even when the item is no longer available.
func checkSubmit(item *models.LostItem, alreadyClaimed bool) error {
	if alreadyClaimed {
		return appErrors.ErrDuplicateClaim
	}
	if item.Status != models.LostItemAvailable {
		return appErrors.Clone(appErrors.ErrInvalidStateTransition, fmt.Sprintf("lost ID is %s and cannot be claimed", item.Status))
	}
	return nil
}

// checkTransition evaluates action against the locked claim.
func checkTransition(action models.ClaimAction, claim *models.Claim) error {
	t, ok := claimTransitions[action]
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("unknown claim action %q", action))
	}
	if claim.Status != t.claimFrom {
		return appErrors.Clone(appErrors.ErrInvalidStateTransition,
			fmt.Sprintf("cannot %s a claim that is %s", actionVerb(action), claim.Status))
	}
	return nil
}

// checkOwnership guards student-initiated transitions.
func checkOwnership(actor Actor, claim *models.Claim) error {
	if claim.ClaimantID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "claim belongs to another student")
	}
	return nil
}

func validateVerification(details string) error {
	if utf8.RuneCountInString(strings.TrimSpace(details)) < minVerificationLength {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("verification details must be at least %d characters", minVerificationLength))
	}
	return nil
}

// resolveNotes trims notes, enforces the length cap and falls back to the default.
// A required note with no default must be supplied.
func resolveNotes(notes *string, fallback string, required bool) (*string, error) {
	var value string
	if notes != nil {
		value = strings.TrimSpace(*notes)
	}
	if utf8.RuneCountInString(value) > maxAdminNotesLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("admin notes must be at most %d characters", maxAdminNotesLength))
	}
	if value == "" {
		if required {
			return nil, appErrors.Clone(appErrors.ErrValidation, "admin notes are required")
		}
		if fallback == "" {
			return nil, nil
		}
		value = fallback
	}
	return &value, nil
}

func actionVerb(action models.ClaimAction) string {
	if action == models.ActionBulkApprove {
		return string(models.ActionApprove)
	}
	return string(action)
}

func auditActionFor(action models.ClaimAction) string {
	switch action {
	case models.ActionSubmit:
		return models.AuditActionClaimSubmit
	case models.ActionApprove:
		return models.AuditActionClaimApprove
	case models.ActionReject:
		return models.AuditActionClaimReject
	case models.ActionCollect:
		return models.AuditActionClaimCollect
	case models.ActionCancel:
		return models.AuditActionClaimCancel
	default:
		return models.AuditActionClaimBulk
	}
}
