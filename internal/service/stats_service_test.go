package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

type stubStatsStore struct {
	pingErr      error
	claimCounts  models.ClaimCounts
	counters     models.HealthCounters
	lostActivity []models.ActivityEntry
	claimEvents  []models.ActivityEntry
	trendCalls   int
	activityArgs []int
	idTypeSince  *time.Time
}

func (s *stubStatsStore) Ping(ctx context.Context) error { return s.pingErr }
func (s *stubStatsStore) LostIDCounts(ctx context.Context) (models.LostIDCounts, error) {
	return models.LostIDCounts{Total: 12, Available: 5, Claimed: 4, Returned: 3}, nil
}
func (s *stubStatsStore) ClaimCounts(ctx context.Context) (models.ClaimCounts, error) {
	return s.claimCounts, nil
}
func (s *stubStatsStore) StudentCount(ctx context.Context) (int, error) { return 40, nil }
func (s *stubStatsStore) RecentCounts(ctx context.Context, since time.Time) (models.RecentCounts, error) {
	return models.RecentCounts{NewLostIDs: 2, NewClaims: 3, Collections: 1}, nil
}
func (s *stubStatsStore) MonthlyTrends(ctx context.Context, months int) ([]models.TrendPoint, error) {
	s.trendCalls++
	return []models.TrendPoint{{Month: "2026-02", LostIDs: 4, Claims: 3, Collections: 1}}, nil
}
func (s *stubStatsStore) IDTypeStats(ctx context.Context, since *time.Time) ([]models.IDTypeStat, error) {
	s.idTypeSince = since
	return []models.IDTypeStat{{IDType: models.IDTypeStudent, Total: 3}}, nil
}
func (s *stubStatsStore) TopLocations(ctx context.Context, limit int) ([]models.LocationStat, error) {
	return []models.LocationStat{{Location: "Library", Total: 4, Returned: 2, ReturnRate: 50}}, nil
}
func (s *stubStatsStore) ProcessingTimes(ctx context.Context, since time.Time) (models.ProcessingTimes, error) {
	return models.ProcessingTimes{Processed: 3, AvgHours: 10.4567, MinHours: 1.001, MaxHours: 30.999}, nil
}
func (s *stubStatsStore) RecentLostIDActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error) {
	s.activityArgs = append(s.activityArgs, limit)
	return s.lostActivity, nil
}
func (s *stubStatsStore) RecentClaimActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error) {
	s.activityArgs = append(s.activityArgs, limit)
	return s.claimEvents, nil
}
func (s *stubStatsStore) HealthCounters(ctx context.Context, now time.Time) (models.HealthCounters, error) {
	return s.counters, nil
}
func (s *stubStatsStore) ClaimStatusCounts(ctx context.Context, since time.Time) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: models.ClaimPending, Count: 2}}, nil
}
func (s *stubStatsStore) DailyClaimStats(ctx context.Context, days int) ([]models.DailyClaimStat, error) {
	return []models.DailyClaimStat{{Date: "2026-03-01", Submitted: 2}}, nil
}
func (s *stubStatsStore) ClaimIDTypeCounts(ctx context.Context, since time.Time) ([]models.IDTypeCount, error) {
	return nil, nil
}

var statsNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newStatsFixture(repo *stubStatsStore) (*StatsService, *memCache) {
	backend := newMemCache()
	metrics := NewMetricsService()
	cache := NewCacheService(backend, metrics, time.Minute, zap.NewNop(), true)
	svc := NewStatsService(repo, cache, metrics, zap.NewNop())
	svc.now = func() time.Time { return statsNow }
	return svc, backend
}

func TestStatsServiceDashboardCachesAndComputesSuccessRate(t *testing.T) {
	repo := &stubStatsStore{claimCounts: models.ClaimCounts{Total: 8, Pending: 2, Approved: 1, Rejected: 2, Collected: 3}}
	svc, _ := newStatsFixture(repo)

	stats, hit, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 38, stats.SuccessRate)
	assert.Equal(t, 40, stats.Students)
	assert.Equal(t, 5, stats.LostIDs.Available)

	again, hit, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, stats.SuccessRate, again.SuccessRate)
}

func TestStatsServiceSuccessRateWithoutClaims(t *testing.T) {
	assert.Equal(t, 0, successRate(models.ClaimCounts{}))
	assert.Equal(t, 100, successRate(models.ClaimCounts{Total: 2, Collected: 2}))
}

func TestStatsServiceInvalidationDropsCachedStats(t *testing.T) {
	repo := &stubStatsStore{}
	svc, backend := newStatsFixture(repo)

	_, _, err := svc.Trends(context.Background(), 0)
	require.NoError(t, err)
	_, hit, err := svc.Trends(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.trendCalls)

	require.NoError(t, backend.DeleteByPattern(context.Background(), statsCachePattern))
	_, hit, err = svc.Trends(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.trendCalls)
}

func TestStatsServiceTrendsRejectsOutOfRange(t *testing.T) {
	svc, _ := newStatsFixture(&stubStatsStore{})
	for _, months := range []int{-1, 25} {
		_, _, err := svc.Trends(context.Background(), months)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "months=%d", months)
	}
}

func TestStatsServiceIDTypesPeriod(t *testing.T) {
	repo := &stubStatsStore{}
	svc, _ := newStatsFixture(repo)

	_, _, err := svc.IDTypes(context.Background(), "all")
	require.NoError(t, err)
	assert.Nil(t, repo.idTypeSince)

	_, _, err = svc.IDTypes(context.Background(), "30")
	require.NoError(t, err)
	require.NotNil(t, repo.idTypeSince)
	assert.Equal(t, statsNow.AddDate(0, 0, -30), *repo.idTypeSince)

	_, _, err = svc.IDTypes(context.Background(), "week")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStatsServiceProcessingTimesRounds(t *testing.T) {
	svc, _ := newStatsFixture(&stubStatsStore{})
	times, _, err := svc.ProcessingTimes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.46, times.AvgHours)
	assert.Equal(t, 1.0, times.MinHours)
	assert.Equal(t, 31.0, times.MaxHours)
}

func TestStatsServiceActivityMergesNewestFirst(t *testing.T) {
	repo := &stubStatsStore{
		lostActivity: []models.ActivityEntry{
			{Kind: models.ActivityLostID, ID: "l1", OccurredAt: statsNow.Add(-1 * time.Hour)},
			{Kind: models.ActivityLostID, ID: "l2", OccurredAt: statsNow.Add(-5 * time.Hour)},
		},
		claimEvents: []models.ActivityEntry{
			{Kind: models.ActivityClaim, ID: "c1", OccurredAt: statsNow.Add(-2 * time.Hour)},
			{Kind: models.ActivityClaim, ID: "c2", OccurredAt: statsNow.Add(-3 * time.Hour)},
		},
	}
	svc, _ := newStatsFixture(repo)

	entries, _, err := svc.Activity(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, repo.activityArgs)
	require.Len(t, entries, 3)
	assert.Equal(t, "l1", entries[0].ID)
	assert.Equal(t, "c1", entries[1].ID)
	assert.Equal(t, "c2", entries[2].ID)
}

func TestStatsServiceHealth(t *testing.T) {
	svc, _ := newStatsFixture(&stubStatsStore{counters: models.HealthCounters{RecentActivity: 4}})
	health := svc.Health(context.Background())
	assert.Equal(t, models.HealthHealthy, health.Status)
	assert.Empty(t, health.Issues)
	assert.Equal(t, statsNow, health.CheckedAt)

	svc, _ = newStatsFixture(&stubStatsStore{counters: models.HealthCounters{StuckClaims: 2, OverdueCollections: 1}})
	health = svc.Health(context.Background())
	assert.Equal(t, models.HealthWarning, health.Status)
	assert.Len(t, health.Issues, 2)
	assert.Equal(t, models.HealthHealthy, health.Database)

	svc, _ = newStatsFixture(&stubStatsStore{pingErr: errors.New("connection refused")})
	health = svc.Health(context.Background())
	assert.Equal(t, models.HealthUnhealthy, health.Status)
	assert.Equal(t, models.HealthUnhealthy, health.Database)
}

func TestStatsServiceClaimsOverview(t *testing.T) {
	svc, _ := newStatsFixture(&stubStatsStore{})

	overview, _, err := svc.ClaimsOverview(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, overview.PeriodDays)
	require.Len(t, overview.StatusCounts, 1)
	assert.Len(t, overview.Daily, 1)

	_, _, err = svc.ClaimsOverview(context.Background(), 400)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
