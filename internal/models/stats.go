package models

import "time"

// DashboardStats is the admin landing overview.
type DashboardStats struct {
	LostIDs     LostIDCounts `json:"lost_ids"`
	Claims      ClaimCounts  `json:"claims"`
	Students    int          `json:"students"`
	SuccessRate int          `json:"success_rate"`
	Recent      RecentCounts `json:"recent_activity"`
	GeneratedAt time.Time    `json:"generated_at"`
}

type LostIDCounts struct {
	Total     int `db:"total" json:"total"`
	Available int `db:"available" json:"available"`
	Claimed   int `db:"claimed" json:"claimed"`
	Returned  int `db:"returned" json:"returned"`
}

type ClaimCounts struct {
	Total     int `db:"total" json:"total"`
	Pending   int `db:"pending" json:"pending"`
	Approved  int `db:"approved" json:"approved"`
	Rejected  int `db:"rejected" json:"rejected"`
	Collected int `db:"collected" json:"collected"`
}

// RecentCounts covers the last seven days.
type RecentCounts struct {
	NewLostIDs  int `db:"new_lost_ids" json:"new_lost_ids"`
	NewClaims   int `db:"new_claims" json:"new_claims"`
	Collections int `db:"collections" json:"collections"`
}

// TrendPoint is one month of activity. Month is formatted YYYY-MM.
type TrendPoint struct {
	Month       string `db:"month" json:"month"`
	LostIDs     int    `db:"lost_ids" json:"lost_ids"`
	Claims      int    `db:"claims" json:"claims"`
	Collections int    `db:"collections" json:"collections"`
}

type IDTypeStat struct {
	IDType    IDType `db:"id_type" json:"id_type"`
	Total     int    `db:"total" json:"total"`
	Available int    `db:"available" json:"available"`
	Claimed   int    `db:"claimed" json:"claimed"`
	Returned  int    `db:"returned" json:"returned"`
}

type LocationStat struct {
	Location   string  `db:"location" json:"location"`
	Total      int     `db:"total" json:"total"`
	Returned   int     `db:"returned" json:"returned"`
	ReturnRate float64 `db:"return_rate" json:"return_rate"`
}

// ProcessingTimes summarises hours between submission and processing over the last 30 days.
type ProcessingTimes struct {
	Processed int     `db:"processed" json:"processed"`
	AvgHours  float64 `db:"avg_hours" json:"avg_hours"`
	MinHours  float64 `db:"min_hours" json:"min_hours"`
	MaxHours  float64 `db:"max_hours" json:"max_hours"`
}

// Activity feed entry kinds.
const (
	ActivityLostID = "lost_id"
	ActivityClaim  = "claim"
)

type ActivityEntry struct {
	Kind       string    `db:"kind" json:"kind"`
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Status     string    `db:"status" json:"status"`
	Actor      *string   `db:"actor" json:"actor,omitempty"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}

// Health status values.
const (
	HealthHealthy   = "healthy"
	HealthWarning   = "warning"
	HealthUnhealthy = "unhealthy"
)

type SystemHealth struct {
	Status             string        `json:"status"`
	Database           string        `json:"database"`
	RecentActivity     int           `json:"recent_activity"`
	StuckClaims        int           `json:"stuck_pending_claims"`
	OverdueCollections int           `json:"overdue_collections"`
	Issues             []string      `json:"issues,omitempty"`
	Runtime            SystemMetrics `json:"runtime"`
	CheckedAt          time.Time     `json:"checked_at"`
}

// HealthCounters are the datastore figures a health check is derived from.
type HealthCounters struct {
	RecentActivity     int `db:"recent_activity"`
	StuckClaims        int `db:"stuck_claims"`
	OverdueCollections int `db:"overdue_collections"`
}

// SystemMetrics is a point-in-time view of instrumentation counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ClaimTransitions         uint64    `json:"claim_transitions"`
	Goroutines               int       `json:"goroutines"`
	HeapAllocBytes           uint64    `json:"heap_alloc_bytes"`
	UptimeSeconds            int64     `json:"uptime_seconds"`
	GeneratedAt              time.Time `json:"generated_at"`
}

type StatusCount struct {
	Status ClaimStatus `db:"status" json:"status"`
	Count  int         `db:"count" json:"count"`
}

// DailyClaimStat counts claim events for one calendar day (YYYY-MM-DD).
type DailyClaimStat struct {
	Date      string `db:"day" json:"date"`
	Submitted int    `db:"submitted" json:"submitted"`
	Approved  int    `db:"approved" json:"approved"`
	Rejected  int    `db:"rejected" json:"rejected"`
	Collected int    `db:"collected" json:"collected"`
}

type ClaimsOverview struct {
	PeriodDays   int              `json:"period_days"`
	StatusCounts []StatusCount    `json:"status_counts"`
	Daily        []DailyClaimStat `json:"daily"`
	IDTypes      []IDTypeCount    `json:"id_types"`
}

// ExportRange bounds an export by creation date. Nil ends are open.
type ExportRange struct {
	Start *time.Time
	End   *time.Time
}

// ClaimExportRow is one line of the claims export.
type ClaimExportRow struct {
	ID                  string      `db:"id"`
	Status              ClaimStatus `db:"status"`
	ClaimDate           time.Time   `db:"claim_date"`
	ProcessedAt         *time.Time  `db:"processed_at"`
	CollectionDate      *time.Time  `db:"collection_date"`
	AdminNotes          *string     `db:"admin_notes"`
	VerificationDetails string      `db:"verification_details"`
	LostStudentName     string      `db:"lost_student_name"`
	LostStudentID       string      `db:"lost_student_id"`
	IDType              IDType      `db:"id_type"`
	ClaimantName        string      `db:"claimant_name"`
	ClaimantEmail       string      `db:"claimant_email"`
	ProcessedByName     *string     `db:"processed_by_name"`
}

// LostIDExportRow is one line of the lost IDs export.
type LostIDExportRow struct {
	ID            string         `db:"id"`
	StudentID     string         `db:"student_id"`
	StudentName   string         `db:"student_name"`
	IDType        IDType         `db:"id_type"`
	FoundDate     time.Time      `db:"found_date"`
	FoundLocation string         `db:"found_location"`
	Description   *string        `db:"description"`
	Status        LostItemStatus `db:"status"`
	AddedByName   *string        `db:"added_by_name"`
	CreatedAt     time.Time      `db:"created_at"`
	ClaimCount    int            `db:"claim_count"`
}
