package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/repository"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

const statsCachePattern = "stats:*"

type claimStore interface {
	FindDetail(ctx context.Context, id string) (*models.ClaimDetail, error)
	FindDetailForClaimant(ctx context.Context, id, claimantID string) (*models.ClaimDetail, error)
	List(ctx context.Context, filter models.ClaimFilter) ([]models.ClaimDetail, int, error)
	LockByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.Claim, error)
	LockByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) ([]models.Claim, error)
	ExistsForClaimant(ctx context.Context, tx *sqlx.Tx, itemID, claimantID string) (bool, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, claim *models.Claim) error
	UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, upd repository.ClaimStatusUpdate) error
	BulkUpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, ids []string, upd repository.ClaimStatusUpdate) error
	DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.ClaimStatus) error
}

type claimItemLocker interface {
	LockByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.LostItem, error)
	UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, from, to models.LostItemStatus) error
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// ClaimService owns the claim lifecycle. Every transition locks the claim and, when it
// moves, the item, then writes both with compare-and-set updates in one transaction.
type ClaimService struct {
	db        txProvider
	claims    claimStore
	items     claimItemLocker
	audit     auditWriter
	cache     *CacheService
	metrics   *MetricsService
	images    *ImageLinks
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewClaimService wires the claim engine.
func NewClaimService(db txProvider, claims claimStore, items claimItemLocker, audit auditWriter, cache *CacheService, metrics *MetricsService, images *ImageLinks, validate *validator.Validate, logger *zap.Logger) *ClaimService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClaimService{
		db:        db,
		claims:    claims,
		items:     items,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		images:    images,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit files a pending claim for an available item and marks the item claimed.
func (s *ClaimService) Submit(ctx context.Context, actor Actor, req dto.SubmitClaimRequest) (*models.Claim, error) {
	if !actor.isStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit claims")
	}
	req.VerificationDetails = strings.TrimSpace(req.VerificationDetails)
	if err := validateVerification(req.VerificationDetails); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid claim payload")
	}

	claim := &models.Claim{
		ID:                  uuid.NewString(),
		LostItemID:          req.LostItemID,
		ClaimantID:          actor.UserID,
		VerificationDetails: req.VerificationDetails,
		Status:              models.ClaimPending,
		ClaimDate:           s.now().UTC(),
	}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		item, err := s.items.LockByID(ctx, tx, req.LostItemID)
		if err != nil {
			return notFoundOr(err, "lost ID not found", "failed to load lost ID")
		}
		exists, err := s.claims.ExistsForClaimant(ctx, tx, item.ID, actor.UserID)
		if err != nil {
			return appErrors.Storage(err, "failed to check existing claims")
		}
		if err := checkSubmit(item, exists); err != nil {
			return err
		}
		if err := s.claims.CreateWithTx(ctx, tx, claim); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.ErrDuplicateClaim
			}
			return appErrors.Storage(err, "failed to create claim")
		}
		if err := s.items.UpdateStatusWithTx(ctx, tx, item.ID, models.LostItemAvailable, models.LostItemClaimed); err != nil {
			return lostRace(err, "lost ID is no longer available", "failed to update lost ID")
		}
		return nil
	})

	s.record(ctx, actor, models.ActionSubmit, []string{claim.ID}, "", claim.Status, models.LostItemClaimed, err)
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Approve moves a pending claim to approved. The item stays claimed.
func (s *ClaimService) Approve(ctx context.Context, actor Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	notes, err := resolveNotes(req.AdminNotes, defaultApproveNote, false)
	if err != nil {
		return nil, err
	}
	return s.adminTransition(ctx, actor, claimID, models.ActionApprove, notes)
}

// Reject closes a pending claim and releases its item. Notes are mandatory.
func (s *ClaimService) Reject(ctx context.Context, actor Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	notes, err := resolveNotes(req.AdminNotes, "", true)
	if err != nil {
		return nil, err
	}
	return s.adminTransition(ctx, actor, claimID, models.ActionReject, notes)
}

// Collect records the hand-over of an approved claim and marks the item returned.
func (s *ClaimService) Collect(ctx context.Context, actor Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	notes, err := resolveNotes(req.AdminNotes, defaultCollectNote, false)
	if err != nil {
		return nil, err
	}
	return s.adminTransition(ctx, actor, claimID, models.ActionCollect, notes)
}

// Cancel lets a student withdraw their own pending claim.
func (s *ClaimService) Cancel(ctx context.Context, actor Actor, claimID string) error {
	if !actor.isStudent() {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can cancel claims")
	}
	_, err := s.transition(ctx, actor, claimID, models.ActionCancel, nil)
	return err
}

func (s *ClaimService) adminTransition(ctx context.Context, actor Actor, claimID string, action models.ClaimAction, notes *string) (*dto.ClaimTransitionResponse, error) {
	if !actor.isAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return s.transition(ctx, actor, claimID, action, notes)
}

func (s *ClaimService) transition(ctx context.Context, actor Actor, claimID string, action models.ClaimAction, notes *string) (*dto.ClaimTransitionResponse, error) {
	t := claimTransitions[action]
	var (
		result *dto.ClaimTransitionResponse
		from   models.ClaimStatus
	)

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		claim, err := s.claims.LockByID(ctx, tx, claimID)
		if err != nil {
			return notFoundOr(err, "claim not found", "failed to load claim")
		}
		from = claim.Status
		if action == models.ActionCancel {
			if err := checkOwnership(actor, claim); err != nil {
				return err
			}
		}
		if err := checkTransition(action, claim); err != nil {
			return err
		}

		var item *models.LostItem
		if t.touchesItem() {
			if item, err = s.items.LockByID(ctx, tx, claim.LostItemID); err != nil {
				return notFoundOr(err, "lost ID not found", "failed to load lost ID")
			}
		}

		if action == models.ActionCancel {
			if err := s.claims.DeleteWithTx(ctx, tx, claim.ID, t.claimFrom); err != nil {
				return lostRace(err, "claim status changed concurrently", "failed to cancel claim")
			}
		} else {
			upd := s.statusUpdate(actor, action, notes)
			if err := s.claims.UpdateStatusWithTx(ctx, tx, claim.ID, upd); err != nil {
				return lostRace(err, "claim status changed concurrently", "failed to update claim")
			}
			applyUpdate(claim, upd)
		}

		result = &dto.ClaimTransitionResponse{Claim: *claim}
		if item != nil {
			if err := s.items.UpdateStatusWithTx(ctx, tx, item.ID, t.itemFrom, t.itemTo); err != nil {
				return lostRace(err, "lost ID status changed concurrently", "failed to update lost ID")
			}
			result.ItemStatus = t.itemTo
		}
		return nil
	})

	s.record(ctx, actor, action, []string{claimID}, from, t.claimTo, t.itemTo, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkApprove approves every listed claim or none of them.
func (s *ClaimService) BulkApprove(ctx context.Context, actor Actor, req dto.BulkApproveRequest) (*dto.BulkApproveResponse, error) {
	if !actor.isAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "claim_ids must be a non-empty array of claim ids")
	}
	notes, err := resolveNotes(req.AdminNotes, defaultBulkApproveNote, false)
	if err != nil {
		return nil, err
	}
	ids := uniqueSorted(req.ClaimIDs)

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		locked, err := s.claims.LockByIDs(ctx, tx, ids)
		if err != nil {
			return appErrors.Storage(err, "failed to load claims")
		}
		if missing := missingIDs(ids, locked); len(missing) > 0 {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("claims not found: %s", strings.Join(missing, ", ")))
		}
		for i := range locked {
			if err := checkTransition(models.ActionBulkApprove, &locked[i]); err != nil {
				return appErrors.Clone(appErrors.ErrInvalidStateTransition,
					fmt.Sprintf("claim %s is %s and cannot be approved", locked[i].ID, locked[i].Status))
			}
		}
		upd := s.statusUpdate(actor, models.ActionBulkApprove, notes)
		if err := s.claims.BulkUpdateStatusWithTx(ctx, tx, ids, upd); err != nil {
			return lostRace(err, "claim status changed concurrently", "failed to approve claims")
		}
		return nil
	})

	s.record(ctx, actor, models.ActionBulkApprove, ids, models.ClaimPending, models.ClaimApproved, "", err)
	if err != nil {
		return nil, err
	}
	return &dto.BulkApproveResponse{Approved: len(ids), ClaimIDs: ids}, nil
}

// ListMine returns the student's own claims, newest first.
func (s *ClaimService) ListMine(ctx context.Context, actor Actor, status string, page, pageSize int) ([]models.ClaimDetail, *models.Pagination, error) {
	if !actor.isStudent() {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "student role required")
	}
	filter := models.ClaimFilter{ClaimantID: actor.UserID, Page: page, PageSize: pageSize}
	if err := applyClaimStatus(&filter, status); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, 10)
}

// GetMine returns one of the student's claims. Claims of other students are reported as missing.
func (s *ClaimService) GetMine(ctx context.Context, actor Actor, id string) (*models.ClaimDetail, error) {
	if !actor.isStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student role required")
	}
	detail, err := s.claims.FindDetailForClaimant(ctx, id, actor.UserID)
	if err != nil {
		return nil, notFoundOr(err, "claim not found", "failed to load claim")
	}
	detail.ImageURL = s.images.Link(detail.ImageFilename)
	return detail, nil
}

// List returns claims for the admin queue.
func (s *ClaimService) List(ctx context.Context, filter models.ClaimFilter, status string) ([]models.ClaimDetail, *models.Pagination, error) {
	if err := applyClaimStatus(&filter, status); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, 20)
}

// Get returns one claim with its joined item and claimant.
func (s *ClaimService) Get(ctx context.Context, id string) (*models.ClaimDetail, error) {
	detail, err := s.claims.FindDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "claim not found", "failed to load claim")
	}
	detail.ImageURL = s.images.Link(detail.ImageFilename)
	return detail, nil
}

func (s *ClaimService) list(ctx context.Context, filter models.ClaimFilter, fallback int) ([]models.ClaimDetail, *models.Pagination, error) {
	filter.Page, filter.PageSize = pageParams(filter.Page, filter.PageSize, fallback)
	claims, total, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list claims")
	}
	for i := range claims {
		claims[i].ImageURL = s.images.Link(claims[i].ImageFilename)
	}
	return claims, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *ClaimService) statusUpdate(actor Actor, action models.ClaimAction, notes *string) repository.ClaimStatusUpdate {
	t := claimTransitions[action]
	now := s.now().UTC()
	upd := repository.ClaimStatusUpdate{From: t.claimFrom, To: t.claimTo, AdminNotes: notes}
	switch action {
	case models.ActionApprove, models.ActionBulkApprove, models.ActionReject:
		processedBy := actor.UserID
		upd.ProcessedBy = &processedBy
		upd.ProcessedAt = &now
	case models.ActionCollect:
		upd.CollectionDate = &now
	}
	return upd
}

func applyUpdate(claim *models.Claim, upd repository.ClaimStatusUpdate) {
	claim.Status = upd.To
	if upd.AdminNotes != nil {
		claim.AdminNotes = upd.AdminNotes
	}
	if upd.ProcessedBy != nil {
		claim.ProcessedBy = upd.ProcessedBy
	}
	if upd.ProcessedAt != nil {
		claim.ProcessedAt = upd.ProcessedAt
	}
	if upd.CollectionDate != nil {
		claim.CollectionDate = upd.CollectionDate
	}
}

// record runs the post-commit side effects. Only committed transitions are audited.
func (s *ClaimService) record(ctx context.Context, actor Actor, action models.ClaimAction, ids []string, from, to models.ClaimStatus, itemTo models.LostItemStatus, err error) {
	switch {
	case err == nil:
		s.metrics.RecordClaimTransition(action, TransitionSucceeded)
	case errors.Is(err, appErrors.ErrInvalidStateTransition), errors.Is(err, appErrors.ErrDuplicateClaim):
		s.metrics.RecordClaimTransition(action, TransitionRejected)
		return
	default:
		s.metrics.RecordClaimTransition(action, TransitionFailed)
		if appErr := appErrors.FromError(err); appErr.Status >= 500 {
			s.logger.Error("claim transition failed", zap.String("action", string(action)), zap.Strings("claim_ids", ids), zap.Error(err))
		}
		return
	}

	newValues := map[string]interface{}{"status": to}
	if to == "" {
		newValues["status"] = "deleted"
	}
	if itemTo != "" {
		newValues["lost_id_status"] = itemTo
	}
	newPayload, _ := json.Marshal(newValues)
	var oldPayload []byte
	if from != "" {
		oldPayload, _ = json.Marshal(map[string]interface{}{"status": from})
	}

	for _, id := range ids {
		if s.audit == nil {
			break
		}
		claimID := id
		userID := actor.UserID
		if auditErr := s.audit.Create(ctx, &models.AuditLog{
			UserID:     &userID,
			Action:     auditActionFor(action),
			Resource:   models.AuditResourceClaim,
			ResourceID: &claimID,
			OldValues:  oldPayload,
			NewValues:  newPayload,
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		}); auditErr != nil {
			s.logger.Warn("failed to record claim audit log", zap.String("claim_id", claimID), zap.Error(auditErr))
		}
	}
	s.cache.Invalidate(ctx, statsCachePattern)
}

func applyClaimStatus(filter *models.ClaimFilter, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	status := models.ClaimStatus(strings.ToLower(raw))
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid claim status %q", raw))
	}
	filter.Status = &status
	return nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func missingIDs(want []string, found []models.Claim) []string {
	present := make(map[string]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
