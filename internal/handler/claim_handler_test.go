package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/middleware"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/service"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type fakeClaimService struct {
	actor      service.Actor
	action     string
	claimID    string
	notes      *string
	filter     models.ClaimFilter
	status     string
	bulk       dto.BulkApproveRequest
	err        error
	submitted  dto.SubmitClaimRequest
	cancelled  string
	listedPage int
}

func (f *fakeClaimService) transition(action string, actor service.Actor, id string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	f.action, f.actor, f.claimID, f.notes = action, actor, id, req.AdminNotes
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ClaimTransitionResponse{Claim: models.Claim{ID: id, Status: models.ClaimApproved}, ItemStatus: models.LostItemClaimed}, nil
}

func (f *fakeClaimService) Submit(ctx context.Context, actor service.Actor, req dto.SubmitClaimRequest) (*models.Claim, error) {
	f.actor, f.submitted = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Claim{ID: "claim-new"}, nil
}

func (f *fakeClaimService) Approve(ctx context.Context, actor service.Actor, id string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	return f.transition("approve", actor, id, req)
}

func (f *fakeClaimService) Reject(ctx context.Context, actor service.Actor, id string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	return f.transition("reject", actor, id, req)
}

func (f *fakeClaimService) Collect(ctx context.Context, actor service.Actor, id string, req dto.ClaimActionRequest) (*dto.ClaimTransitionResponse, error) {
	return f.transition("collect", actor, id, req)
}

func (f *fakeClaimService) Cancel(ctx context.Context, actor service.Actor, id string) error {
	f.actor, f.cancelled = actor, id
	return f.err
}

func (f *fakeClaimService) BulkApprove(ctx context.Context, actor service.Actor, req dto.BulkApproveRequest) (*dto.BulkApproveResponse, error) {
	f.bulk = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.BulkApproveResponse{Approved: len(req.ClaimIDs), ClaimIDs: req.ClaimIDs}, nil
}

func (f *fakeClaimService) ListMine(ctx context.Context, actor service.Actor, status string, page, size int) ([]models.ClaimDetail, *models.Pagination, error) {
	f.actor, f.status, f.listedPage = actor, status, page
	return []models.ClaimDetail{}, models.NewPagination(page, 10, 0), nil
}

func (f *fakeClaimService) GetMine(ctx context.Context, actor service.Actor, id string) (*models.ClaimDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "claim not found")
}

func (f *fakeClaimService) List(ctx context.Context, filter models.ClaimFilter, status string) ([]models.ClaimDetail, *models.Pagination, error) {
	f.filter, f.status = filter, status
	return []models.ClaimDetail{}, models.NewPagination(1, 20, 0), nil
}

func (f *fakeClaimService) Get(ctx context.Context, id string) (*models.ClaimDetail, error) {
	return &models.ClaimDetail{Claim: models.Claim{ID: id}}, nil
}

func adminContext(rec *httptest.ResponseRecorder, req *http.Request, params ...gin.Param) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = params
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "a-1", Role: models.RoleAdmin})
	return c
}

func studentContext(rec *httptest.ResponseRecorder, req *http.Request, params ...gin.Param) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = params
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent})
	return c
}

func TestClaimHandlerSubmitReturnsClaimID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/users/claims", map[string]string{
		"lost_id_id":           "8f0d8f7e-4a57-4a4c-9f61-0f7c6c2b7e11",
		"verification_details": "My photo shows glasses and a blue shirt",
	})
	h.Submit(studentContext(rec, req))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"claim_id":"claim-new"`)
	assert.Equal(t, "s-1", svc.actor.UserID)
	assert.Equal(t, "8f0d8f7e-4a57-4a4c-9f61-0f7c6c2b7e11", svc.submitted.LostItemID)
}

func TestClaimHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClaimHandler(&fakeClaimService{err: appErrors.ErrDuplicateClaim})

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/users/claims", map[string]string{"lost_id_id": "x", "verification_details": "details"})
	h.Submit(studentContext(rec, req))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClaimHandlerApproveWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/claims/c-1/approve", nil)
	h.Approve(adminContext(rec, req, gin.Param{Key: "id", Value: "c-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approve", svc.action)
	assert.Equal(t, "c-1", svc.claimID)
	assert.Nil(t, svc.notes)
	assert.Equal(t, models.RoleAdmin, svc.actor.Role)
	assert.Contains(t, rec.Body.String(), `"lost_id_status":"claimed"`)
}

func TestClaimHandlerRejectPassesNotes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/admin/claims/c-1/reject", map[string]string{"admin_notes": "Photo does not match"})
	h.Reject(adminContext(rec, req, gin.Param{Key: "id", Value: "c-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.notes)
	assert.Equal(t, "Photo does not match", *svc.notes)
}

func TestClaimHandlerTransitionConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClaimHandler(&fakeClaimService{err: appErrors.ErrInvalidStateTransition})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/claims/c-1/collect", nil)
	h.Collect(adminContext(rec, req, gin.Param{Key: "id", Value: "c-1"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrInvalidStateTransition.Code)
}

func TestClaimHandlerMalformedActionBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/claims/c-1/approve", bytes.NewBufferString("{notes"))
	req.Header.Set("Content-Type", "application/json")
	h.Approve(adminContext(rec, req, gin.Param{Key: "id", Value: "c-1"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.action)
}

func TestClaimHandlerBulkApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/admin/claims/bulk/approve", map[string][]string{"claim_ids": {"c-1", "c-2"}})
	h.BulkApprove(adminContext(rec, req))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"c-1", "c-2"}, svc.bulk.ClaimIDs)
	assert.Contains(t, rec.Body.String(), `"approved":2`)
}

func TestClaimHandlerAdminListPassesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/claims?status=pending&search=banda&sortBy=found_date&sortOrder=asc&page=2&limit=5", nil)
	h.AdminList(adminContext(rec, req))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", svc.status)
	assert.Equal(t, models.ClaimFilter{Search: "banda", SortBy: "found_date", SortOrder: "asc", Page: 2, PageSize: 5}, svc.filter)
	assert.Contains(t, rec.Body.String(), `"pagination"`)
}

func TestClaimHandlerStudentReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeClaimService{}
	h := NewClaimHandler(svc)

	rec := httptest.NewRecorder()
	h.MyClaims(studentContext(rec, httptest.NewRequest(http.MethodGet, "/api/users/claims/my-claims?status=approved&page=3", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", svc.status)
	assert.Equal(t, 3, svc.listedPage)

	rec = httptest.NewRecorder()
	h.GetMine(studentContext(rec, httptest.NewRequest(http.MethodGet, "/api/users/claims/c-9", nil), gin.Param{Key: "id", Value: "c-9"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Cancel(studentContext(rec, httptest.NewRequest(http.MethodDelete, "/api/users/claims/c-1", nil), gin.Param{Key: "id", Value: "c-1"}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "c-1", svc.cancelled)
}
