package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/response"
)

type statsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, bool, error)
	Trends(ctx context.Context, months int) ([]models.TrendPoint, bool, error)
	IDTypes(ctx context.Context, period string) ([]models.IDTypeStat, bool, error)
	Locations(ctx context.Context) ([]models.LocationStat, bool, error)
	ProcessingTimes(ctx context.Context) (*models.ProcessingTimes, bool, error)
	Activity(ctx context.Context, limit int) ([]models.ActivityEntry, bool, error)
	Health(ctx context.Context) *models.SystemHealth
	ClaimsOverview(ctx context.Context, period int) (*models.ClaimsOverview, bool, error)
}

// StatsHandler serves the admin statistics endpoints.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Dashboard godoc
// @Summary Admin dashboard overview
// @Tags Admin Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, hit, err := h.service.Dashboard(c.Request.Context())
	h.respond(c, stats, hit, err)
}

// Trends godoc
// @Summary Monthly trends
// @Tags Admin Stats
// @Produce json
// @Param months query int false "1 to 24, default 6"
// @Success 200 {object} response.Envelope
// @Router /admin/trends [get]
func (h *StatsHandler) Trends(c *gin.Context) {
	months, ok := intQuery(c, "months")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "months must be a number"))
		return
	}
	points, hit, err := h.service.Trends(c.Request.Context(), months)
	h.respond(c, points, hit, err)
}

// IDTypes godoc
// @Summary Lost IDs by type
// @Tags Admin Stats
// @Produce json
// @Param period query string false "Days or all"
// @Success 200 {object} response.Envelope
// @Router /admin/stats/id-types [get]
func (h *StatsHandler) IDTypes(c *gin.Context) {
	stats, hit, err := h.service.IDTypes(c.Request.Context(), c.Query("period"))
	h.respond(c, stats, hit, err)
}

// Locations godoc
// @Summary Top found locations
// @Tags Admin Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats/locations [get]
func (h *StatsHandler) Locations(c *gin.Context) {
	stats, hit, err := h.service.Locations(c.Request.Context())
	h.respond(c, stats, hit, err)
}

// ProcessingTimes godoc
// @Summary Claim processing times over the last 30 days
// @Tags Admin Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats/processing-times [get]
func (h *StatsHandler) ProcessingTimes(c *gin.Context) {
	times, hit, err := h.service.ProcessingTimes(c.Request.Context())
	h.respond(c, times, hit, err)
}

// Activity godoc
// @Summary Recent activity feed
// @Tags Admin Stats
// @Produce json
// @Param limit query int false "Entries, default 20"
// @Success 200 {object} response.Envelope
// @Router /admin/activity [get]
func (h *StatsHandler) Activity(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a number"))
		return
	}
	entries, hit, err := h.service.Activity(c.Request.Context(), limit)
	h.respond(c, entries, hit, err)
}

// Health godoc
// @Summary System health
// @Description Reports 503 when the database is unreachable.
// @Tags Admin Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/health [get]
func (h *StatsHandler) Health(c *gin.Context) {
	health := h.service.Health(c.Request.Context())
	status := http.StatusOK
	if health.Status == models.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, health, nil)
}

// ClaimsOverview godoc
// @Summary Claims overview
// @Tags Admin Claims
// @Produce json
// @Param period query int false "Days, default 30"
// @Success 200 {object} response.Envelope
// @Router /admin/claims/stats/overview [get]
func (h *StatsHandler) ClaimsOverview(c *gin.Context) {
	period, ok := intQuery(c, "period")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be a number of days"))
		return
	}
	overview, hit, err := h.service.ClaimsOverview(c.Request.Context(), period)
	h.respond(c, overview, hit, err)
}

func (h *StatsHandler) respond(c *gin.Context, data interface{}, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil, withMeta(c, hit))
}
