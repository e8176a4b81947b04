package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

const (
	recentWindow          = 7 * 24 * time.Hour
	processingWindow      = 30 * 24 * time.Hour
	topLocationsLimit     = 10
	defaultTrendMonths    = 6
	maxTrendMonths        = 24
	defaultActivityLimit  = 20
	maxActivityLimit      = 100
	defaultOverviewPeriod = 30
	maxOverviewPeriod     = 365
	overviewDailyDays     = 7
)

type statsStore interface {
	Ping(ctx context.Context) error
	LostIDCounts(ctx context.Context) (models.LostIDCounts, error)
	ClaimCounts(ctx context.Context) (models.ClaimCounts, error)
	StudentCount(ctx context.Context) (int, error)
	RecentCounts(ctx context.Context, since time.Time) (models.RecentCounts, error)
	MonthlyTrends(ctx context.Context, months int) ([]models.TrendPoint, error)
	IDTypeStats(ctx context.Context, since *time.Time) ([]models.IDTypeStat, error)
	TopLocations(ctx context.Context, limit int) ([]models.LocationStat, error)
	ProcessingTimes(ctx context.Context, since time.Time) (models.ProcessingTimes, error)
	RecentLostIDActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error)
	RecentClaimActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error)
	HealthCounters(ctx context.Context, now time.Time) (models.HealthCounters, error)
	ClaimStatusCounts(ctx context.Context, since time.Time) ([]models.StatusCount, error)
	DailyClaimStats(ctx context.Context, days int) ([]models.DailyClaimStat, error)
	ClaimIDTypeCounts(ctx context.Context, since time.Time) ([]models.IDTypeCount, error)
}

// StatsService computes admin statistics. Read-mostly payloads are cached under stats:*
// and dropped whenever a claim or lost ID changes.
type StatsService struct {
	repo    statsStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Dashboard returns the overview counts. The bool reports a cache hit.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, bool, error) {
	stats, hit, err := cached(ctx, s.cache, "stats:dashboard", func(ctx context.Context) (models.DashboardStats, error) {
		var out models.DashboardStats
		var err error
		if out.LostIDs, err = s.repo.LostIDCounts(ctx); err != nil {
			return out, err
		}
		if out.Claims, err = s.repo.ClaimCounts(ctx); err != nil {
			return out, err
		}
		if out.Students, err = s.repo.StudentCount(ctx); err != nil {
			return out, err
		}
		now := s.now().UTC()
		if out.Recent, err = s.repo.RecentCounts(ctx, now.Add(-recentWindow)); err != nil {
			return out, err
		}
		out.SuccessRate = successRate(out.Claims)
		out.GeneratedAt = now
		return out, nil
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load dashboard statistics")
	}
	return &stats, hit, nil
}

// Trends returns monthly activity for 1 to 24 months. Zero selects the default.
func (s *StatsService) Trends(ctx context.Context, months int) ([]models.TrendPoint, bool, error) {
	if months == 0 {
		months = defaultTrendMonths
	}
	if months < 1 || months > maxTrendMonths {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("months must be between 1 and %d", maxTrendMonths))
	}
	key := "stats:trends:" + strconv.Itoa(months)
	points, hit, err := cached(ctx, s.cache, key, func(ctx context.Context) ([]models.TrendPoint, error) {
		return s.repo.MonthlyTrends(ctx, months)
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load trends")
	}
	return points, hit, nil
}

// IDTypes breaks lost IDs down by type. period is a number of days or "all".
func (s *StatsService) IDTypes(ctx context.Context, period string) ([]models.IDTypeStat, bool, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = "all"
	}
	var since *time.Time
	if period != "all" {
		days, err := strconv.Atoi(period)
		if err != nil || days < 1 {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "period must be a positive number of days or \"all\"")
		}
		start := s.now().UTC().AddDate(0, 0, -days)
		since = &start
	}
	stats, hit, err := cached(ctx, s.cache, "stats:id-types:"+period, func(ctx context.Context) ([]models.IDTypeStat, error) {
		return s.repo.IDTypeStats(ctx, since)
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load id type statistics")
	}
	return stats, hit, nil
}

// Locations returns the top found locations with their return rates.
func (s *StatsService) Locations(ctx context.Context) ([]models.LocationStat, bool, error) {
	stats, hit, err := cached(ctx, s.cache, "stats:locations", func(ctx context.Context) ([]models.LocationStat, error) {
		return s.repo.TopLocations(ctx, topLocationsLimit)
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load location statistics")
	}
	return stats, hit, nil
}

// ProcessingTimes summarises how long claims waited for a decision over the last 30 days.
func (s *StatsService) ProcessingTimes(ctx context.Context) (*models.ProcessingTimes, bool, error) {
	times, hit, err := cached(ctx, s.cache, "stats:processing-times", func(ctx context.Context) (models.ProcessingTimes, error) {
		t, err := s.repo.ProcessingTimes(ctx, s.now().UTC().Add(-processingWindow))
		if err != nil {
			return t, err
		}
		t.AvgHours = round2(t.AvgHours)
		t.MinHours = round2(t.MinHours)
		t.MaxHours = round2(t.MaxHours)
		return t, nil
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load processing times")
	}
	return &times, hit, nil
}

// Activity merges recent lost-ID registrations and claim events, newest first.
// Each source contributes at most half of limit.
func (s *StatsService) Activity(ctx context.Context, limit int) ([]models.ActivityEntry, bool, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	key := "stats:activity:" + strconv.Itoa(limit)
	entries, hit, err := cached(ctx, s.cache, key, func(ctx context.Context) ([]models.ActivityEntry, error) {
		since := s.now().UTC().Add(-recentWindow)
		half := (limit + 1) / 2
		lost, err := s.repo.RecentLostIDActivity(ctx, since, half)
		if err != nil {
			return nil, err
		}
		claims, err := s.repo.RecentClaimActivity(ctx, since, half)
		if err != nil {
			return nil, err
		}
		merged := make([]models.ActivityEntry, 0, len(lost)+len(claims))
		merged = append(append(merged, lost...), claims...)
		sort.SliceStable(merged, func(i, j int) bool { return merged[i].OccurredAt.After(merged[j].OccurredAt) })
		if len(merged) > limit {
			merged = merged[:limit]
		}
		return merged, nil
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load activity")
	}
	return entries, hit, nil
}

// Health reports datastore reachability and backlog warnings. It is never cached.
func (s *StatsService) Health(ctx context.Context) *models.SystemHealth {
	now := s.now().UTC()
	health := &models.SystemHealth{
		Status:    models.HealthHealthy,
		Database:  models.HealthHealthy,
		Runtime:   s.metrics.Snapshot(),
		CheckedAt: now,
	}

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("health check database ping failed", zap.Error(err))
		health.Status = models.HealthUnhealthy
		health.Database = models.HealthUnhealthy
		health.Issues = append(health.Issues, "database unreachable")
		return health
	}

	counters, err := s.repo.HealthCounters(ctx, now)
	if err != nil {
		s.logger.Warn("health check counters failed", zap.Error(err))
		health.Status = models.HealthWarning
		health.Issues = append(health.Issues, "backlog counters unavailable")
		return health
	}
	health.RecentActivity = counters.RecentActivity
	health.StuckClaims = counters.StuckClaims
	health.OverdueCollections = counters.OverdueCollections
	if counters.StuckClaims > 0 {
		health.Issues = append(health.Issues, fmt.Sprintf("%d claims pending for more than 7 days", counters.StuckClaims))
	}
	if counters.OverdueCollections > 0 {
		health.Issues = append(health.Issues, fmt.Sprintf("%d approved claims not collected within 14 days", counters.OverdueCollections))
	}
	if len(health.Issues) > 0 {
		health.Status = models.HealthWarning
	}
	return health
}

// ClaimsOverview summarises claims submitted in the last period days (default 30).
func (s *StatsService) ClaimsOverview(ctx context.Context, period int) (*models.ClaimsOverview, bool, error) {
	if period == 0 {
		period = defaultOverviewPeriod
	}
	if period < 1 || period > maxOverviewPeriod {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period must be between 1 and %d days", maxOverviewPeriod))
	}
	key := "stats:claims-overview:" + strconv.Itoa(period)
	overview, hit, err := cached(ctx, s.cache, key, func(ctx context.Context) (models.ClaimsOverview, error) {
		since := s.now().UTC().AddDate(0, 0, -period)
		out := models.ClaimsOverview{PeriodDays: period}
		var err error
		if out.StatusCounts, err = s.repo.ClaimStatusCounts(ctx, since); err != nil {
			return out, err
		}
		if out.Daily, err = s.repo.DailyClaimStats(ctx, overviewDailyDays); err != nil {
			return out, err
		}
		if out.IDTypes, err = s.repo.ClaimIDTypeCounts(ctx, since); err != nil {
			return out, err
		}
		return out, nil
	})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to load claims overview")
	}
	return &overview, hit, nil
}

// successRate is collected claims as a rounded percentage of all claims.
func successRate(c models.ClaimCounts) int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Collected) / float64(c.Total) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
