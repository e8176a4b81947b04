package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/service"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/response"
)

type claimService interface {
	Submit(ctx context.Context, actor service.Actor, req dto.SubmitClaimRequest) (*models.Claim, error)
	Approve(ctx context.Context, actor service.Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error)
	Reject(ctx context.Context, actor service.Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error)
	Collect(ctx context.Context, actor service.Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error)
	Cancel(ctx context.Context, actor service.Actor, claimID string) error
	BulkApprove(ctx context.Context, actor service.Actor, req dto.BulkApproveRequest) (*dto.BulkApproveResponse, error)
	ListMine(ctx context.Context, actor service.Actor, status string, page, pageSize int) ([]models.ClaimDetail, *models.Pagination, error)
	GetMine(ctx context.Context, actor service.Actor, id string) (*models.ClaimDetail, error)
	List(ctx context.Context, filter models.ClaimFilter, status string) ([]models.ClaimDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ClaimDetail, error)
}

type claimAction func(ctx context.Context, actor service.Actor, claimID string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error)

// ClaimHandler exposes the claim lifecycle to students and admins.
type ClaimHandler struct {
	service claimService
}

// NewClaimHandler constructs the handler.
func NewClaimHandler(svc claimService) *ClaimHandler {
	return &ClaimHandler{service: svc}
}

// Submit godoc
// @Summary Claim a lost ID
// @Tags Claims
// @Accept json
// @Produce json
// @Param payload body dto.SubmitClaimRequest true "Claim"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/claims [post]
func (h *ClaimHandler) Submit(c *gin.Context) {
	var req dto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid claim payload"))
		return
	}
	claim, err := h.service.Submit(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SubmitClaimResponse{ClaimID: claim.ID})
}

// MyClaims godoc
// @Summary List my claims
// @Tags Claims
// @Produce json
// @Param status query string false "pending, approved, rejected, collected or all"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users/claims/my-claims [get]
func (h *ClaimHandler) MyClaims(c *gin.Context) {
	page, limit := pageQuery(c)
	claims, pagination, err := h.service.ListMine(c.Request.Context(), actorFromContext(c), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claims, pagination)
}

// GetMine godoc
// @Summary Get one of my claims
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/claims/{id} [get]
func (h *ClaimHandler) GetMine(c *gin.Context) {
	claim, err := h.service.GetMine(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// Cancel godoc
// @Summary Withdraw a pending claim
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/claims/{id} [delete]
func (h *ClaimHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AdminList godoc
// @Summary List claims
// @Tags Admin Claims
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Claimant or lost ID search"
// @Param sortBy query string false "claim_date, status, lost_student_name or found_date"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/claims [get]
func (h *ClaimHandler) AdminList(c *gin.Context) {
	page, limit := pageQuery(c)
	filter := models.ClaimFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      page,
		PageSize:  limit,
	}
	claims, pagination, err := h.service.List(c.Request.Context(), filter, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claims, pagination)
}

// AdminGet godoc
// @Summary Claim details
// @Tags Admin Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/claims/{id} [get]
func (h *ClaimHandler) AdminGet(c *gin.Context) {
	claim, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// Approve godoc
// @Summary Approve a pending claim
// @Tags Admin Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body dto.ClaimActionRequest false "Notes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/claims/{id}/approve [post]
func (h *ClaimHandler) Approve(c *gin.Context) {
	h.act(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a pending claim
// @Description admin_notes carries the rejection reason and is required.
// @Tags Admin Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body dto.ClaimActionRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/claims/{id}/reject [post]
func (h *ClaimHandler) Reject(c *gin.Context) {
	h.act(c, h.service.Reject)
}

// Collect godoc
// @Summary Mark an approved claim as collected
// @Tags Admin Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body dto.ClaimActionRequest false "Notes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/claims/{id}/collect [post]
func (h *ClaimHandler) Collect(c *gin.Context) {
	h.act(c, h.service.Collect)
}

// BulkApprove godoc
// @Summary Approve several pending claims atomically
// @Tags Admin Claims
// @Accept json
// @Produce json
// @Param payload body dto.BulkApproveRequest true "Claims"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/claims/bulk/approve [post]
func (h *ClaimHandler) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk approve payload"))
		return
	}
	res, err := h.service.BulkApprove(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// act runs a single-claim admin transition. The notes body is optional.
func (h *ClaimHandler) act(c *gin.Context, fn claimAction) {
	var req dto.ClaimActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := fn(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
