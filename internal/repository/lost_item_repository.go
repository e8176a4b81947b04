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

	"github.com/noah-isme/lostid-api/internal/models"
)

const lostItemColumns = `id, student_id, student_name, id_type, found_date, found_location, description, image_filename, image_path, image_url, image_size, image_mimetype, status, added_by, created_at, updated_at`

// LostItemRepository provides access to the lost_ids table.
type LostItemRepository struct {
	db *sqlx.DB
}

// NewLostItemRepository creates a new instance of LostItemRepository.
func NewLostItemRepository(db *sqlx.DB) *LostItemRepository {
	return &LostItemRepository{db: db}
}

// FindByID returns a lost item regardless of status.
func (r *LostItemRepository) FindByID(ctx context.Context, id string) (*models.LostItem, error) {
	query := `SELECT ` + lostItemColumns + ` FROM lost_ids WHERE id = $1`
	var item models.LostItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lost id: %w", err)
	}
	return &item, nil
}

// FindDetail returns a lost item with the registering admin's name.
func (r *LostItemRepository) FindDetail(ctx context.Context, id string) (*models.LostItemDetail, error) {
	const query = `SELECT l.id, l.student_id, l.student_name, l.id_type, l.found_date, l.found_location, l.description, l.image_filename, l.image_path, l.image_url, l.image_size, l.image_mimetype, l.status, l.added_by, l.created_at, l.updated_at, a.full_name AS added_by_name
FROM lost_ids l LEFT JOIN admins a ON a.id = l.added_by WHERE l.id = $1`
	var detail models.LostItemDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lost id detail: %w", err)
	}
	return &detail, nil
}

// List returns lost items matching filter with the total count. Newest first.
func (r *LostItemRepository) List(ctx context.Context, filter models.LostItemFilter) ([]models.LostItem, int, error) {
	baseQuery := `FROM lost_ids WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.IDType != nil {
		conditions = append(conditions, fmt.Sprintf("id_type = $%d", len(args)+1))
		args = append(args, *filter.IDType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(student_name ILIKE $%d OR student_id ILIKE $%d OR description ILIKE $%d)", n, n, n))
		args = append(args, "%"+search+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize, 20)
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", lostItemColumns, baseQuery, pageSize, (page-1)*pageSize)

	var items []models.LostItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list lost ids: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lost ids: %w", err)
	}
	return items, total, nil
}

// Create inserts a new lost item. New items always start available.
func (r *LostItemRepository) Create(ctx context.Context, item *models.LostItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Status = models.LostItemAvailable

	const query = `INSERT INTO lost_ids (id, student_id, student_name, id_type, found_date, found_location, description, image_filename, image_path, image_url, image_size, image_mimetype, status, added_by, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :id_type, :found_date, :found_location, :description, :image_filename, :image_path, :image_url, :image_size, :image_mimetype, :status, :added_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create lost id: %w", err)
	}
	return nil
}

// UpdateWithTx rewrites the descriptive and image columns. Status is owned by the claim engine and never touched here.
func (r *LostItemRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, item *models.LostItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lost_ids SET student_id = :student_id, student_name = :student_name, id_type = :id_type, found_date = :found_date, found_location = :found_location, description = :description,
image_filename = :image_filename, image_path = :image_path, image_url = :image_url, image_size = :image_size, image_mimetype = :image_mimetype, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update lost id: %w", err)
	}
	return requireAffected(res, 1)
}

// Suggestions returns distinct owner names and numbers of available items matching term.
func (r *LostItemRepository) Suggestions(ctx context.Context, term string, limit int) ([]models.LostItemSuggestion, error) {
	const query = `SELECT DISTINCT student_name, student_id FROM lost_ids
WHERE status = 'available' AND (student_name ILIKE $1 OR student_id ILIKE $1)
ORDER BY student_name LIMIT $2`
	suggestions := make([]models.LostItemSuggestion, 0)
	if err := r.db.SelectContext(ctx, &suggestions, query, "%"+term+"%", limit); err != nil {
		return nil, fmt.Errorf("lost id suggestions: %w", err)
	}
	return suggestions, nil
}

// IDTypeCounts groups available items by id type.
func (r *LostItemRepository) IDTypeCounts(ctx context.Context) ([]models.IDTypeCount, error) {
	const query = `SELECT id_type, COUNT(*) AS count FROM lost_ids WHERE status = 'available' GROUP BY id_type ORDER BY count DESC`
	counts := make([]models.IDTypeCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("lost id type counts: %w", err)
	}
	return counts, nil
}

// LockByID reads the item row and holds its lock until tx ends.
func (r *LostItemRepository) LockByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.LostItem, error) {
	query := `SELECT ` + lostItemColumns + ` FROM lost_ids WHERE id = $1 FOR UPDATE`
	var item models.LostItem
	if err := tx.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock lost id: %w", err)
	}
	return &item, nil
}

// UpdateStatusWithTx moves the item from one status to another. It returns sql.ErrNoRows
// when the row is no longer in the expected status.
func (r *LostItemRepository) UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, from, to models.LostItemStatus) error {
	const query = `UPDATE lost_ids SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := tx.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update lost id status: %w", err)
	}
	return requireAffected(res, 1)
}

// DeleteWithTx removes the item row.
func (r *LostItemRepository) DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM lost_ids WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lost id: %w", err)
	}
	return requireAffected(res, 1)
}
