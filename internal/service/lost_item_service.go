package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/imaging"
	"github.com/noah-isme/lostid-api/pkg/storage"
)

const (
	suggestionLimit     = 10
	minSuggestionLength = 2
	defaultMaxImageSize = 5 * 1024 * 1024
)

type lostItemStore interface {
	FindByID(ctx context.Context, id string) (*models.LostItem, error)
	FindDetail(ctx context.Context, id string) (*models.LostItemDetail, error)
	List(ctx context.Context, filter models.LostItemFilter) ([]models.LostItem, int, error)
	Create(ctx context.Context, item *models.LostItem) error
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, item *models.LostItem) error
	Suggestions(ctx context.Context, term string, limit int) ([]models.LostItemSuggestion, error)
	IDTypeCounts(ctx context.Context) ([]models.IDTypeCount, error)
	LockByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.LostItem, error)
	DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type itemClaimStore interface {
	HistoryForItem(ctx context.Context, itemID string) ([]models.ClaimHistoryEntry, error)
	CountActiveForItem(ctx context.Context, tx *sqlx.Tx, itemID string) (int, error)
	DeleteByItemWithTx(ctx context.Context, tx *sqlx.Tx, itemID string) error
}

type imageFiles interface {
	Store(name string, data []byte) (string, error)
	Open(ref string) (*os.File, error)
	Delete(ref string) error
}

type imageProcessor interface {
	Process(data []byte) (*imaging.Result, error)
}

// LostItemConfig bounds accepted uploads.
type LostItemConfig struct {
	MaxImageSize int64
}

// LostItemService manages registered lost IDs and their images. It never changes an
// item's status; that belongs to the claim engine.
type LostItemService struct {
	db        txProvider
	items     lostItemStore
	claims    itemClaimStore
	files     imageFiles
	processor imageProcessor
	links     *ImageLinks
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    LostItemConfig
	now       func() time.Time
}

// NewLostItemService constructs a LostItemService.
func NewLostItemService(db txProvider, items lostItemStore, claims itemClaimStore, files imageFiles, processor imageProcessor, links *ImageLinks, audit auditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger, config LostItemConfig) *LostItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MaxImageSize <= 0 {
		config.MaxImageSize = defaultMaxImageSize
	}
	return &LostItemService{
		db:        db,
		items:     items,
		claims:    claims,
		files:     files,
		processor: processor,
		links:     links,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// ListAvailable returns claimable items for students.
func (s *LostItemService) ListAvailable(ctx context.Context, search, idType string, page, pageSize int) ([]models.LostItem, *models.Pagination, error) {
	available := models.LostItemAvailable
	filter := models.LostItemFilter{Status: &available, Search: search, Page: page, PageSize: pageSize}
	if err := applyIDType(&filter, idType); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, 10)
}

// GetAvailable returns a single available item. Items that are claimed or returned are hidden from students.
func (s *LostItemService) GetAvailable(ctx context.Context, id string) (*models.LostItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "lost ID not found", "failed to load lost ID")
	}
	if item.Status != models.LostItemAvailable {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lost ID not found")
	}
	s.sign(item)
	return item, nil
}

// Suggestions powers search-as-you-type over available items.
func (s *LostItemService) Suggestions(ctx context.Context, q string) ([]models.LostItemSuggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSuggestionLength {
		return []models.LostItemSuggestion{}, nil
	}
	suggestions, err := s.items.Suggestions(ctx, q, suggestionLimit)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load suggestions")
	}
	return suggestions, nil
}

// IDTypes lists id types of available items with counts.
func (s *LostItemService) IDTypes(ctx context.Context) ([]models.IDTypeCount, error) {
	counts, err := s.items.IDTypeCounts(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load id types")
	}
	return counts, nil
}

// List returns items in every status for admins.
func (s *LostItemService) List(ctx context.Context, status, idType, search string, page, pageSize int) ([]models.LostItem, *models.Pagination, error) {
	filter := models.LostItemFilter{Search: search, Page: page, PageSize: pageSize}
	if status = strings.TrimSpace(status); status != "" && !strings.EqualFold(status, "all") {
		st := models.LostItemStatus(strings.ToLower(status))
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", status))
		}
		filter.Status = &st
	}
	if err := applyIDType(&filter, idType); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, 20)
}

// GetDetail returns an item with its full claim history.
func (s *LostItemService) GetDetail(ctx context.Context, id string) (*models.LostItemDetail, error) {
	detail, err := s.items.FindDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "lost ID not found", "failed to load lost ID")
	}
	history, err := s.claims.HistoryForItem(ctx, id)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load claim history")
	}
	detail.Claims = history
	s.sign(&detail.LostItem)
	return detail, nil
}

// Create registers a found ID. A stored image is removed again if the row cannot be written.
func (s *LostItemService) Create(ctx context.Context, actor Actor, input dto.LostItemInput, upload *dto.ImageUpload) (*models.LostItem, error) {
	item := &models.LostItem{}
	if err := s.applyInput(item, input); err != nil {
		return nil, err
	}
	if actor.UserID != "" {
		addedBy := actor.UserID
		item.AddedBy = &addedBy
	}

	stored, err := s.storeImage(item, upload)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		s.discard(stored)
		return nil, appErrors.Storage(err, "failed to create lost ID")
	}

	s.record(ctx, actor, models.AuditActionLostIDCreate, item.ID, nil, item)
	s.sign(item)
	return item, nil
}

// Update edits an item under its row lock. A new image replaces the old one, whose file is
// deleted once the transaction commits; on any failure the new file is removed instead.
func (s *LostItemService) Update(ctx context.Context, actor Actor, id string, input dto.LostItemInput, upload *dto.ImageUpload) (*models.LostItem, error) {
	var (
		before models.LostItem
		item   *models.LostItem
		stored string
	)
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		locked, err := s.items.LockByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "lost ID not found", "failed to load lost ID")
		}
		before = *locked
		if err := s.applyInput(locked, input); err != nil {
			return err
		}
		if stored, err = s.storeImage(locked, upload); err != nil {
			return err
		}
		if err := s.items.UpdateWithTx(ctx, tx, locked); err != nil {
			return notFoundOr(err, "lost ID not found", "failed to update lost ID")
		}
		item = locked
		return nil
	})
	if err != nil {
		s.discard(stored)
		return nil, err
	}
	if stored != "" && before.HasImage() {
		s.discard(*before.ImageFilename)
	}

	s.record(ctx, actor, models.AuditActionLostIDUpdate, item.ID, &before, item)
	s.sign(item)
	return item, nil
}

// Delete removes an item and its claims. Items with a pending or approved claim are refused.
func (s *LostItemService) Delete(ctx context.Context, actor Actor, id string) error {
	var removed *models.LostItem
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		item, err := s.items.LockByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "lost ID not found", "failed to load lost ID")
		}
		active, err := s.claims.CountActiveForItem(ctx, tx, id)
		if err != nil {
			return appErrors.Storage(err, "failed to count active claims")
		}
		if active > 0 {
			return appErrors.Clone(appErrors.ErrConflict, "cannot delete a lost ID with pending or approved claims")
		}
		if err := s.claims.DeleteByItemWithTx(ctx, tx, id); err != nil {
			return appErrors.Storage(err, "failed to delete claims")
		}
		if err := s.items.DeleteWithTx(ctx, tx, id); err != nil {
			return notFoundOr(err, "lost ID not found", "failed to delete lost ID")
		}
		removed = item
		return nil
	})
	if err != nil {
		return err
	}

	if removed.HasImage() {
		s.discard(*removed.ImageFilename)
	}
	s.record(ctx, actor, models.AuditActionLostIDDelete, id, removed, nil)
	return nil
}

// OpenImage checks the download token and opens the stored file.
func (s *LostItemService) OpenImage(filename, token string) (*os.File, error) {
	if err := s.links.Verify(filename, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired image link")
	}
	file, err := s.files.Open(filename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
		}
		return nil, appErrors.Storage(err, "failed to open image")
	}
	return file, nil
}

func (s *LostItemService) list(ctx context.Context, filter models.LostItemFilter, fallback int) ([]models.LostItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = pageParams(filter.Page, filter.PageSize, fallback)
	items, total, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list lost IDs")
	}
	for i := range items {
		s.sign(&items[i])
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *LostItemService) applyInput(item *models.LostItem, input dto.LostItemInput) error {
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.StudentName = strings.TrimSpace(input.StudentName)
	input.FoundLocation = strings.TrimSpace(input.FoundLocation)
	input.IDType = strings.TrimSpace(input.IDType)
	if err := s.validator.Struct(input); err != nil {
		return validationError(err, "invalid lost ID payload")
	}
	found, err := time.Parse("2006-01-02", input.FoundDate)
	if err != nil {
		return validationError(err, "found_date must be YYYY-MM-DD")
	}
	if found.After(s.now().UTC()) {
		return appErrors.Clone(appErrors.ErrValidation, "found_date cannot be in the future")
	}

	item.StudentID = input.StudentID
	item.StudentName = input.StudentName
	item.IDType = models.IDType(input.IDType)
	item.FoundDate = found
	item.FoundLocation = input.FoundLocation
	item.Description = nil
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != "" {
			item.Description = &desc
		}
	}
	return nil
}

// storeImage validates and writes upload, pointing item at the new file. It returns the stored reference.
func (s *LostItemService) storeImage(item *models.LostItem, upload *dto.ImageUpload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", nil
	}
	if int64(len(upload.Data)) > s.config.MaxImageSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image must be at most %d MB", s.config.MaxImageSize/(1024*1024)))
	}
	result, err := s.processor.Process(upload.Data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return "", appErrors.Clone(appErrors.ErrValidation, "only JPEG, PNG, GIF and WebP images are allowed")
		}
		if errors.Is(err, imaging.ErrCorruptImage) {
			return "", appErrors.Clone(appErrors.ErrValidation, "image could not be decoded")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process image")
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + uuid.NewString() + result.Ext
	ref, err := s.files.Store(name, result.Data)
	if err != nil {
		return "", appErrors.Storage(err, "failed to store image")
	}

	publicPath := s.links.Path(ref)
	size := int64(len(result.Data))
	mime := result.MIME
	diskPath := "uploads/" + ref
	item.ImageFilename = &ref
	item.ImagePath = &diskPath
	item.ImageURL = &publicPath
	item.ImageSize = &size
	item.ImageMimeType = &mime
	return ref, nil
}

func (s *LostItemService) discard(ref string) {
	if ref == "" {
		return
	}
	if err := s.files.Delete(ref); err != nil {
		s.logger.Warn("failed to delete image file", zap.String("file", ref), zap.Error(err))
	}
}

// sign replaces the stored path with a signed download URL.
func (s *LostItemService) sign(item *models.LostItem) {
	if !item.HasImage() {
		item.ImageURL = nil
		return
	}
	item.ImageURL = s.links.Link(item.ImageFilename)
}

func (s *LostItemService) record(ctx context.Context, actor Actor, action, itemID string, before, after *models.LostItem) {
	if s.audit != nil {
		var oldValues, newValues []byte
		if before != nil {
			oldValues, _ = json.Marshal(before)
		}
		if after != nil {
			newValues, _ = json.Marshal(after)
		}
		userID := actor.UserID
		id := itemID
		if err := s.audit.Create(ctx, &models.AuditLog{
			UserID:     &userID,
			Action:     action,
			Resource:   models.AuditResourceLostID,
			ResourceID: &id,
			OldValues:  oldValues,
			NewValues:  newValues,
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record lost ID audit log", zap.String("lost_id", itemID), zap.Error(err))
		}
	}
	s.cache.Invalidate(ctx, statsCachePattern)
}

func applyIDType(filter *models.LostItemFilter, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	t := models.IDType(strings.ToLower(raw))
	if !t.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid id_type %q", raw))
	}
	filter.IDType = &t
	return nil
}
