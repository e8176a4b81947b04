package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lostid-api/internal/dto"
	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type fakeStatsService struct {
	hit      bool
	months   int
	period   int
	limit    int
	health   *models.SystemHealth
	trendErr error
}

func (f *fakeStatsService) Dashboard(ctx context.Context) (*models.DashboardStats, bool, error) {
	return &models.DashboardStats{SuccessRate: 75, Students: 12}, f.hit, nil
}

func (f *fakeStatsService) Trends(ctx context.Context, months int) ([]models.TrendPoint, bool, error) {
	f.months = months
	return []models.TrendPoint{}, f.hit, f.trendErr
}

func (f *fakeStatsService) IDTypes(ctx context.Context, period string) ([]models.IDTypeStat, bool, error) {
	return nil, f.hit, nil
}

func (f *fakeStatsService) Locations(ctx context.Context) ([]models.LocationStat, bool, error) {
	return nil, f.hit, nil
}

func (f *fakeStatsService) ProcessingTimes(ctx context.Context) (*models.ProcessingTimes, bool, error) {
	return &models.ProcessingTimes{}, f.hit, nil
}

func (f *fakeStatsService) Activity(ctx context.Context, limit int) ([]models.ActivityEntry, bool, error) {
	f.limit = limit
	return nil, f.hit, nil
}

func (f *fakeStatsService) Health(ctx context.Context) *models.SystemHealth {
	return f.health
}

func (f *fakeStatsService) ClaimsOverview(ctx context.Context, period int) (*models.ClaimsOverview, bool, error) {
	f.period = period
	return &models.ClaimsOverview{PeriodDays: period}, f.hit, nil
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error map[string]interface{} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestStatsHandlerDashboardReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandler(&fakeStatsService{hit: true})

	rec := httptest.NewRecorder()
	h.Dashboard(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, float64(75), env.Data["success_rate"])
}

func TestStatsHandlerQueryParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeStatsService{}
	h := NewStatsHandler(svc)

	rec := httptest.NewRecorder()
	h.Trends(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/trends?months=12", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, svc.months)

	rec = httptest.NewRecorder()
	h.Trends(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/trends?months=twelve", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Activity(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/activity", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.limit)

	rec = httptest.NewRecorder()
	h.ClaimsOverview(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/claims/stats/overview?period=7", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.period)

	svc.trendErr = appErrors.Clone(appErrors.ErrValidation, "months must be between 1 and 24")
	rec = httptest.NewRecorder()
	h.Trends(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/trends?months=99", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsHandlerHealthStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeStatsService{health: &models.SystemHealth{Status: models.HealthWarning, Issues: []string{"2 claims pending for more than 7 days"}}}
	h := NewStatsHandler(svc)

	rec := httptest.NewRecorder()
	h.Health(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/health", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "warning", decodeEnvelope(t, rec).Data["status"])

	svc.health = &models.SystemHealth{Status: models.HealthUnhealthy, Database: models.HealthUnhealthy}
	rec = httptest.NewRecorder()
	h.Health(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/health", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeExportService struct {
	req  dto.ExportRequest
	file *dto.ExportFile
	err  error
}

func (f *fakeExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	f.req = req
	return f.file, f.err
}

func TestExportHandlerStreamsAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeExportService{file: &dto.ExportFile{Filename: "claims_export_2026-03-02.csv", ContentType: "text/csv", Data: []byte("Claim ID\nc-1\n")}}
	h := NewExportHandler(svc)

	rec := httptest.NewRecorder()
	h.Export(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/csv?type=claims&start_date=2026-02-01", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "claims", svc.req.Type)
	assert.Equal(t, "2026-02-01", svc.req.StartDate)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="claims_export_2026-03-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Claim ID\nc-1\n", rec.Body.String())
}

func TestExportHandlerNoRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(&fakeExportService{err: appErrors.Clone(appErrors.ErrNotFound, "no data found for export")})

	rec := httptest.NewRecorder()
	h.Export(adminContext(rec, httptest.NewRequest(http.MethodGet, "/api/admin/export/csv?type=lost_ids", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
