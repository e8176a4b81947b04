package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/service"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/response"
)

// multipartOverhead leaves room for the text fields that accompany an image.
const multipartOverhead = 1 << 20

type lostItemService interface {
	ListAvailable(ctx context.Context, search, idType string, page, pageSize int) ([]models.LostItem, *models.Pagination, error)
	GetAvailable(ctx context.Context, id string) (*models.LostItem, error)
	Suggestions(ctx context.Context, q string) ([]models.LostItemSuggestion, error)
	IDTypes(ctx context.Context) ([]models.IDTypeCount, error)
	List(ctx context.Context, status, idType, search string, page, pageSize int) ([]models.LostItem, *models.Pagination, error)
	GetDetail(ctx context.Context, id string) (*models.LostItemDetail, error)
	Create(ctx context.Context, actor service.Actor, input dto.LostItemInput, upload *dto.ImageUpload) (*models.LostItem, error)
	Update(ctx context.Context, actor service.Actor, id string, input dto.LostItemInput, upload *dto.ImageUpload) (*models.LostItem, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// LostItemHandler serves the student catalogue and admin management of lost IDs.
type LostItemHandler struct {
	service  lostItemService
	maxImage int64
}

// NewLostItemHandler constructs the handler. maxImage bounds the uploaded image in bytes.
func NewLostItemHandler(svc lostItemService, maxImage int64) *LostItemHandler {
	if maxImage <= 0 {
		maxImage = 5 << 20
	}
	return &LostItemHandler{service: svc, maxImage: maxImage}
}

// ListAvailable godoc
// @Summary Browse available lost IDs
// @Tags Lost IDs
// @Produce json
// @Param search query string false "Name, student number or description"
// @Param id_type query string false "ID type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users/lost-ids [get]
func (h *LostItemHandler) ListAvailable(c *gin.Context) {
	page, limit := pageQuery(c)
	items, pagination, err := h.service.ListAvailable(c.Request.Context(), c.Query("search"), c.Query("id_type"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetAvailable godoc
// @Summary Available lost ID details
// @Tags Lost IDs
// @Produce json
// @Param id path string true "Lost ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/lost-ids/{id} [get]
func (h *LostItemHandler) GetAvailable(c *gin.Context) {
	item, err := h.service.GetAvailable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Suggestions godoc
// @Summary Search suggestions
// @Tags Lost IDs
// @Produce json
// @Param q query string true "Prefix, at least 2 characters"
// @Success 200 {object} response.Envelope
// @Router /users/lost-ids/search/suggestions [get]
func (h *LostItemHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.service.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// IDTypes godoc
// @Summary Available ID types with counts
// @Tags Lost IDs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/lost-ids/meta/id-types [get]
func (h *LostItemHandler) IDTypes(c *gin.Context) {
	types, err := h.service.IDTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// AdminList godoc
// @Summary List lost IDs in every status
// @Tags Admin Lost IDs
// @Produce json
// @Param status query string false "available, claimed, returned or all"
// @Param id_type query string false "ID type"
// @Param search query string false "Search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/lost-ids [get]
func (h *LostItemHandler) AdminList(c *gin.Context) {
	page, limit := pageQuery(c)
	items, pagination, err := h.service.List(c.Request.Context(), c.Query("status"), c.Query("id_type"), c.Query("search"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// AdminGet godoc
// @Summary Lost ID with claim history
// @Tags Admin Lost IDs
// @Produce json
// @Param id path string true "Lost ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/lost-ids/{id} [get]
func (h *LostItemHandler) AdminGet(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Register a found ID
// @Tags Admin Lost IDs
// @Accept multipart/form-data
// @Produce json
// @Param student_id formData string true "Student number on the card"
// @Param student_name formData string true "Name on the card"
// @Param id_type formData string true "student_id, government_issued or other"
// @Param found_date formData string true "YYYY-MM-DD"
// @Param found_location formData string true "Where it was found"
// @Param description formData string false "Description"
// @Param image formData file false "Photo"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/lost-ids [post]
func (h *LostItemHandler) Create(c *gin.Context) {
	input, upload, ok := h.bindForm(c)
	if !ok {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actorFromContext(c), input, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update a lost ID
// @Description A new image replaces the stored one.
// @Tags Admin Lost IDs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lost ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/lost-ids/{id} [put]
func (h *LostItemHandler) Update(c *gin.Context) {
	input, upload, ok := h.bindForm(c)
	if !ok {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), input, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a lost ID
// @Description Refused while a claim is pending.
// @Tags Admin Lost IDs
// @Produce json
// @Param id path string true "Lost ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /admin/lost-ids/{id} [delete]
func (h *LostItemHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *LostItemHandler) bindForm(c *gin.Context) (dto.LostItemInput, *dto.ImageUpload, bool) {
	var input dto.LostItemInput
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImage+multipartOverhead)
	if err := c.ShouldBindWith(&input, binding.FormMultipart); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload too large"))
			return input, nil, false
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return input, nil, false
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, true
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload"))
		return input, nil, false
	}
	if header.Size > h.maxImage {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds maximum size"))
		return input, nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload"))
		return input, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImage+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload"))
		return input, nil, false
	}
	return input, &dto.ImageUpload{Filename: strings.TrimSpace(header.Filename), Data: data}, true
}
