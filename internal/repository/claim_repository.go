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
	"github.com/lib/pq"

	"github.com/noah-isme/lostid-api/internal/models"
)

const claimColumns = `id, lost_id_id, claimant_student_id, verification_details, status, claim_date, admin_notes, processed_by, processed_at, collection_date`

const claimDetailSelect = `SELECT c.id, c.lost_id_id, c.claimant_student_id, c.verification_details, c.status, c.claim_date, c.admin_notes, c.processed_by, c.processed_at, c.collection_date,
l.student_name AS lost_student_name, l.student_id AS lost_student_id, l.id_type, l.found_date, l.found_location, l.description AS item_description, l.status AS item_status, l.image_filename,
s.first_name AS claimant_first_name, s.last_name AS claimant_last_name, s.email AS claimant_email, s.phone AS claimant_phone, s.student_id AS claimant_student_number,
a.full_name AS processed_by_name
FROM claims c
JOIN lost_ids l ON l.id = c.lost_id_id
JOIN students s ON s.id = c.claimant_student_id
LEFT JOIN admins a ON a.id = c.processed_by`

var claimSortColumns = map[string]string{
	models.ClaimSortClaimDate:       "c.claim_date",
	models.ClaimSortStatus:          "c.status",
	models.ClaimSortLostStudentName: "l.student_name",
	models.ClaimSortFoundDate:       "l.found_date",
}

// ClaimStatusUpdate describes a compare-and-set transition of one or more claims.
// Nil pointer fields keep the stored value.
type ClaimStatusUpdate struct {
	From           models.ClaimStatus
	To             models.ClaimStatus
	AdminNotes     *string
	ProcessedBy    *string
	ProcessedAt    *time.Time
	CollectionDate *time.Time
}

// ClaimRepository provides access to the claims table.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository creates a new instance of ClaimRepository.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// FindDetail returns the joined claim view.
func (r *ClaimRepository) FindDetail(ctx context.Context, id string) (*models.ClaimDetail, error) {
	var detail models.ClaimDetail
	if err := r.db.GetContext(ctx, &detail, claimDetailSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find claim detail: %w", err)
	}
	return &detail, nil
}

// FindDetailForClaimant returns the claim only when it belongs to claimantID.
func (r *ClaimRepository) FindDetailForClaimant(ctx context.Context, id, claimantID string) (*models.ClaimDetail, error) {
	var detail models.ClaimDetail
	query := claimDetailSelect + ` WHERE c.id = $1 AND c.claimant_student_id = $2`
	if err := r.db.GetContext(ctx, &detail, query, id, claimantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find claimant claim: %w", err)
	}
	return &detail, nil
}

// List returns joined claims matching filter with the total count.
func (r *ClaimRepository) List(ctx context.Context, filter models.ClaimFilter) ([]models.ClaimDetail, int, error) {
	where := ` WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ClaimantID != "" {
		conditions = append(conditions, fmt.Sprintf("c.claimant_student_id = $%d", len(args)+1))
		args = append(args, filter.ClaimantID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(l.student_name ILIKE $%d OR l.student_id ILIKE $%d OR s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.email ILIKE $%d)", n, n, n, n, n))
		args = append(args, "%"+search+"%")
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	sortColumn, ok := claimSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "c.claim_date"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize, 20)
	listQuery := fmt.Sprintf("%s%s ORDER BY %s %s, c.id LIMIT %d OFFSET %d", claimDetailSelect, where, sortColumn, sortOrder, pageSize, (page-1)*pageSize)

	claims := make([]models.ClaimDetail, 0)
	if err := r.db.SelectContext(ctx, &claims, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM claims c JOIN lost_ids l ON l.id = c.lost_id_id JOIN students s ON s.id = c.claimant_student_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}
	return claims, total, nil
}

// HistoryForItem lists every claim ever made on an item, newest first.
func (r *ClaimRepository) HistoryForItem(ctx context.Context, itemID string) ([]models.ClaimHistoryEntry, error) {
	const query = `SELECT c.id, c.status, c.claim_date, c.processed_at, c.admin_notes,
s.first_name || ' ' || s.last_name AS claimant_name, s.student_id AS claimant_student_number
FROM claims c JOIN students s ON s.id = c.claimant_student_id
WHERE c.lost_id_id = $1 ORDER BY c.claim_date DESC`
	history := make([]models.ClaimHistoryEntry, 0)
	if err := r.db.SelectContext(ctx, &history, query, itemID); err != nil {
		return nil, fmt.Errorf("claim history: %w", err)
	}
	return history, nil
}

// LockByID reads the claim row and holds its lock until tx ends.
func (r *ClaimRepository) LockByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 FOR UPDATE`
	var claim models.Claim
	if err := tx.GetContext(ctx, &claim, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock claim: %w", err)
	}
	return &claim, nil
}

// LockByIDs locks every listed claim in id order so concurrent bulk operations cannot deadlock.
// Missing ids are simply absent from the result.
func (r *ClaimRepository) LockByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) ([]models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	claims := make([]models.Claim, 0, len(ids))
	if err := tx.SelectContext(ctx, &claims, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("lock claims: %w", err)
	}
	return claims, nil
}

// ExistsForClaimant reports whether claimantID already has a claim on itemID, in any status.
func (r *ClaimRepository) ExistsForClaimant(ctx context.Context, tx *sqlx.Tx, itemID, claimantID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM claims WHERE lost_id_id = $1 AND claimant_student_id = $2)`
	var exists bool
	if err := tx.GetContext(ctx, &exists, query, itemID, claimantID); err != nil {
		return false, fmt.Errorf("check existing claim: %w", err)
	}
	return exists, nil
}

// CountActiveForItem counts claims on itemID that are still pending or approved.
func (r *ClaimRepository) CountActiveForItem(ctx context.Context, tx *sqlx.Tx, itemID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM claims WHERE lost_id_id = $1 AND status IN ('pending', 'approved')`
	if err := tx.GetContext(ctx, &count, query, itemID); err != nil {
		return 0, fmt.Errorf("count active claims: %w", err)
	}
	return count, nil
}

// CreateWithTx inserts a claim inside tx.
func (r *ClaimRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, claim *models.Claim) error {
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	if claim.ClaimDate.IsZero() {
		claim.ClaimDate = time.Now().UTC()
	}
	const query = `INSERT INTO claims (id, lost_id_id, claimant_student_id, verification_details, status, claim_date)
VALUES (:id, :lost_id_id, :claimant_student_id, :verification_details, :status, :claim_date)`
	if _, err := tx.NamedExecContext(ctx, query, claim); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicate {
			return translated
		}
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

// UpdateStatusWithTx applies upd to one claim. It returns sql.ErrNoRows when the claim
// is not in upd.From any more.
func (r *ClaimRepository) UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, upd ClaimStatusUpdate) error {
	const query = `UPDATE claims SET status = $3, admin_notes = COALESCE($4, admin_notes), processed_by = COALESCE($5, processed_by),
processed_at = COALESCE($6, processed_at), collection_date = COALESCE($7, collection_date)
WHERE id = $1 AND status = $2`
	res, err := tx.ExecContext(ctx, query, id, upd.From, upd.To, upd.AdminNotes, upd.ProcessedBy, upd.ProcessedAt, upd.CollectionDate)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	return requireAffected(res, 1)
}

// BulkUpdateStatusWithTx applies upd to every id. Unless all rows move it returns sql.ErrNoRows.
func (r *ClaimRepository) BulkUpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, ids []string, upd ClaimStatusUpdate) error {
	const query = `UPDATE claims SET status = $3, admin_notes = COALESCE($4, admin_notes), processed_by = COALESCE($5, processed_by),
processed_at = COALESCE($6, processed_at), collection_date = COALESCE($7, collection_date)
WHERE id = ANY($1) AND status = $2`
	res, err := tx.ExecContext(ctx, query, pq.Array(ids), upd.From, upd.To, upd.AdminNotes, upd.ProcessedBy, upd.ProcessedAt, upd.CollectionDate)
	if err != nil {
		return fmt.Errorf("bulk update claim status: %w", err)
	}
	return requireAffected(res, int64(len(ids)))
}

// DeleteWithTx removes a claim that is still in status.
func (r *ClaimRepository) DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.ClaimStatus) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = $1 AND status = $2`, id, status)
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	return requireAffected(res, 1)
}

// DeleteByItemWithTx removes every claim on itemID.
func (r *ClaimRepository) DeleteByItemWithTx(ctx context.Context, tx *sqlx.Tx, itemID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE lost_id_id = $1`, itemID); err != nil {
		return fmt.Errorf("delete item claims: %w", err)
	}
	return nil
}
