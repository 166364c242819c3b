package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot served to the admin
// panel alongside the Prometheus scrape endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// DashboardSummary backs the admin dashboard landing card.
type DashboardSummary struct {
	TotalRaces        int       `json:"total_races"`
	OpenRaces         int       `json:"open_races"`
	UpcomingRaces     int       `json:"upcoming_races"`
	ClosedRaces       int       `json:"closed_races"`
	PublishedPosts    int       `json:"published_posts"`
	PendingRunRecords int       `json:"pending_run_records"`
	GeneratedAt       time.Time `json:"generated_at"`
}
