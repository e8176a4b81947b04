package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lostid-api/internal/models"
)

// StatsRepository runs the aggregate queries behind the admin dashboard, reports and exports.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Ping checks datastore connectivity.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LostIDCounts totals lost IDs by status.
func (r *StatsRepository) LostIDCounts(ctx context.Context) (models.LostIDCounts, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'available') AS available,
COUNT(*) FILTER (WHERE status = 'claimed') AS claimed,
COUNT(*) FILTER (WHERE status = 'returned') AS returned
FROM lost_ids`
	var counts models.LostIDCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return counts, fmt.Errorf("lost id counts: %w", err)
	}
	return counts, nil
}

// ClaimCounts totals claims by status.
func (r *StatsRepository) ClaimCounts(ctx context.Context) (models.ClaimCounts, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'pending') AS pending,
COUNT(*) FILTER (WHERE status = 'approved') AS approved,
COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
COUNT(*) FILTER (WHERE status = 'collected') AS collected
FROM claims`
	var counts models.ClaimCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return counts, fmt.Errorf("claim counts: %w", err)
	}
	return counts, nil
}

// StudentCount returns the number of registered students.
func (r *StatsRepository) StudentCount(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("student count: %w", err)
	}
	return total, nil
}

// RecentCounts counts registrations, claims and collections since the given time.
func (r *StatsRepository) RecentCounts(ctx context.Context, since time.Time) (models.RecentCounts, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM lost_ids WHERE created_at >= $1) AS new_lost_ids,
(SELECT COUNT(*) FROM claims WHERE claim_date >= $1) AS new_claims,
(SELECT COUNT(*) FROM claims WHERE status = 'collected' AND collection_date >= $1) AS collections`
	var counts models.RecentCounts
	if err := r.db.GetContext(ctx, &counts, query, since); err != nil {
		return counts, fmt.Errorf("recent counts: %w", err)
	}
	return counts, nil
}

// MonthlyTrends returns one point per month for the last months months, oldest first.
func (r *StatsRepository) MonthlyTrends(ctx context.Context, months int) ([]models.TrendPoint, error) {
	const query = `WITH months AS (
SELECT generate_series(date_trunc('month', NOW()) - ($1::int - 1) * INTERVAL '1 month', date_trunc('month', NOW()), INTERVAL '1 month') AS month
)
SELECT to_char(m.month, 'YYYY-MM') AS month,
(SELECT COUNT(*) FROM lost_ids l WHERE date_trunc('month', l.created_at) = m.month) AS lost_ids,
(SELECT COUNT(*) FROM claims c WHERE date_trunc('month', c.claim_date) = m.month) AS claims,
(SELECT COUNT(*) FROM claims c WHERE c.status = 'collected' AND date_trunc('month', c.collection_date) = m.month) AS collections
FROM months m ORDER BY m.month`
	points := make([]models.TrendPoint, 0, months)
	if err := r.db.SelectContext(ctx, &points, query, months); err != nil {
		return nil, fmt.Errorf("monthly trends: %w", err)
	}
	return points, nil
}

// IDTypeStats breaks lost IDs down by type. A nil since covers all time.
func (r *StatsRepository) IDTypeStats(ctx context.Context, since *time.Time) ([]models.IDTypeStat, error) {
	query := `SELECT id_type, COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'available') AS available,
COUNT(*) FILTER (WHERE status = 'claimed') AS claimed,
COUNT(*) FILTER (WHERE status = 'returned') AS returned
FROM lost_ids`
	var args []interface{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}
	query += ` GROUP BY id_type ORDER BY total DESC`

	stats := make([]models.IDTypeStat, 0)
	if err := r.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("id type stats: %w", err)
	}
	return stats, nil
}

// TopLocations returns the locations where most IDs were found.
func (r *StatsRepository) TopLocations(ctx context.Context, limit int) ([]models.LocationStat, error) {
	const query = `SELECT found_location AS location, COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'returned') AS returned,
ROUND(COUNT(*) FILTER (WHERE status = 'returned')::numeric * 100 / COUNT(*), 2)::float8 AS return_rate
FROM lost_ids GROUP BY found_location ORDER BY total DESC, found_location LIMIT $1`
	stats := make([]models.LocationStat, 0, limit)
	if err := r.db.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, fmt.Errorf("location stats: %w", err)
	}
	return stats, nil
}

// ProcessingTimes summarises hours from submission to processing for claims processed since the given time.
func (r *StatsRepository) ProcessingTimes(ctx context.Context, since time.Time) (models.ProcessingTimes, error) {
	const query = `SELECT COUNT(*) AS processed,
COALESCE(AVG(EXTRACT(EPOCH FROM (processed_at - claim_date)) / 3600), 0)::float8 AS avg_hours,
COALESCE(MIN(EXTRACT(EPOCH FROM (processed_at - claim_date)) / 3600), 0)::float8 AS min_hours,
COALESCE(MAX(EXTRACT(EPOCH FROM (processed_at - claim_date)) / 3600), 0)::float8 AS max_hours
FROM claims WHERE processed_at IS NOT NULL AND processed_at >= $1`
	var times models.ProcessingTimes
	if err := r.db.GetContext(ctx, &times, query, since); err != nil {
		return times, fmt.Errorf("processing times: %w", err)
	}
	return times, nil
}

// RecentLostIDActivity lists lost-ID registrations since the given time, newest first.
func (r *StatsRepository) RecentLostIDActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error) {
	const query = `SELECT 'lost_id' AS kind, l.id::text AS id, l.student_name AS title, l.status, a.full_name AS actor, l.created_at AS occurred_at
FROM lost_ids l LEFT JOIN admins a ON a.id = l.added_by
WHERE l.created_at >= $1 ORDER BY l.created_at DESC LIMIT $2`
	entries := make([]models.ActivityEntry, 0, limit)
	if err := r.db.SelectContext(ctx, &entries, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent lost id activity: %w", err)
	}
	return entries, nil
}

// RecentClaimActivity lists claim events since the given time using each claim's latest timestamp.
func (r *StatsRepository) RecentClaimActivity(ctx context.Context, since time.Time, limit int) ([]models.ActivityEntry, error) {
	const query = `SELECT 'claim' AS kind, c.id::text AS id, l.student_name AS title, c.status, s.first_name || ' ' || s.last_name AS actor,
COALESCE(c.collection_date, c.processed_at, c.claim_date) AS occurred_at
FROM claims c JOIN lost_ids l ON l.id = c.lost_id_id JOIN students s ON s.id = c.claimant_student_id
WHERE COALESCE(c.collection_date, c.processed_at, c.claim_date) >= $1 ORDER BY occurred_at DESC LIMIT $2`
	entries := make([]models.ActivityEntry, 0, limit)
	if err := r.db.SelectContext(ctx, &entries, query, since, limit); err != nil {
		return nil, fmt.Errorf("recent claim activity: %w", err)
	}
	return entries, nil
}

// HealthCounters gathers the figures a health check is judged on.
func (r *StatsRepository) HealthCounters(ctx context.Context, now time.Time) (models.HealthCounters, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM lost_ids WHERE created_at >= $1) + (SELECT COUNT(*) FROM claims WHERE claim_date >= $1) AS recent_activity,
(SELECT COUNT(*) FROM claims WHERE status = 'pending' AND claim_date < $2) AS stuck_claims,
(SELECT COUNT(*) FROM claims WHERE status = 'approved' AND processed_at < $3) AS overdue_collections`
	var counters models.HealthCounters
	err := r.db.GetContext(ctx, &counters, query, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour), now.Add(-14*24*time.Hour))
	if err != nil {
		return counters, fmt.Errorf("health counters: %w", err)
	}
	return counters, nil
}

// ClaimStatusCounts groups claims submitted since the given time by status.
func (r *StatsRepository) ClaimStatusCounts(ctx context.Context, since time.Time) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM claims WHERE claim_date >= $1 GROUP BY status ORDER BY status`
	counts := make([]models.StatusCount, 0, 4)
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("claim status counts: %w", err)
	}
	return counts, nil
}

// DailyClaimStats returns claim events per day for the last days days, oldest first.
func (r *StatsRepository) DailyClaimStats(ctx context.Context, days int) ([]models.DailyClaimStat, error) {
	const query = `WITH days AS (
SELECT generate_series(CURRENT_DATE - ($1::int - 1), CURRENT_DATE, INTERVAL '1 day')::date AS day
)
SELECT to_char(d.day, 'YYYY-MM-DD') AS day,
(SELECT COUNT(*) FROM claims c WHERE c.claim_date::date = d.day) AS submitted,
(SELECT COUNT(*) FROM claims c WHERE c.status = 'approved' AND c.processed_at::date = d.day) AS approved,
(SELECT COUNT(*) FROM claims c WHERE c.status = 'rejected' AND c.processed_at::date = d.day) AS rejected,
(SELECT COUNT(*) FROM claims c WHERE c.status = 'collected' AND c.collection_date::date = d.day) AS collected
FROM days d ORDER BY d.day`
	stats := make([]models.DailyClaimStat, 0, days)
	if err := r.db.SelectContext(ctx, &stats, query, days); err != nil {
		return nil, fmt.Errorf("daily claim stats: %w", err)
	}
	return stats, nil
}

// ClaimIDTypeCounts groups claims submitted since the given time by the claimed item's id type.
func (r *StatsRepository) ClaimIDTypeCounts(ctx context.Context, since time.Time) ([]models.IDTypeCount, error) {
	const query = `SELECT l.id_type, COUNT(*) AS count FROM claims c JOIN lost_ids l ON l.id = c.lost_id_id
WHERE c.claim_date >= $1 GROUP BY l.id_type ORDER BY count DESC`
	counts := make([]models.IDTypeCount, 0, 3)
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("claim id type counts: %w", err)
	}
	return counts, nil
}

// ClaimsForExport returns claims submitted within rng, oldest first.
func (r *StatsRepository) ClaimsForExport(ctx context.Context, rng models.ExportRange) ([]models.ClaimExportRow, error) {
	query := `SELECT c.id, c.status, c.claim_date, c.processed_at, c.collection_date, c.admin_notes, c.verification_details,
l.student_name AS lost_student_name, l.student_id AS lost_student_id, l.id_type,
s.first_name || ' ' || s.last_name AS claimant_name, s.email AS claimant_email, a.full_name AS processed_by_name
FROM claims c JOIN lost_ids l ON l.id = c.lost_id_id JOIN students s ON s.id = c.claimant_student_id
LEFT JOIN admins a ON a.id = c.processed_by`
	where, args := rangeClause("c.claim_date", rng)
	query += where + ` ORDER BY c.claim_date`

	rows := make([]models.ClaimExportRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("export claims: %w", err)
	}
	return rows, nil
}

// LostIDsForExport returns lost IDs registered within rng, oldest first.
func (r *StatsRepository) LostIDsForExport(ctx context.Context, rng models.ExportRange) ([]models.LostIDExportRow, error) {
	query := `SELECT l.id, l.student_id, l.student_name, l.id_type, l.found_date, l.found_location, l.description, l.status,
a.full_name AS added_by_name, l.created_at, (SELECT COUNT(*) FROM claims c WHERE c.lost_id_id = l.id) AS claim_count
FROM lost_ids l LEFT JOIN admins a ON a.id = l.added_by`
	where, args := rangeClause("l.created_at", rng)
	query += where + ` ORDER BY l.created_at`

	rows := make([]models.LostIDExportRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("export lost ids: %w", err)
	}
	return rows, nil
}

// rangeClause renders an inclusive start and exclusive end on column.
func rangeClause(column string, rng models.ExportRange) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if rng.Start != nil {
		args = append(args, *rng.Start)
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if rng.End != nil {
		args = append(args, *rng.End)
		conditions = append(conditions, fmt.Sprintf("%s < $%d", column, len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
