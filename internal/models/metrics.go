package models

import "time"

// SystemMetrics is a JSON snapshot of the service's instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64           `json:"cache_hit_ratio"`
	CacheHits                uint64            `json:"cache_hits"`
	CacheMisses              uint64            `json:"cache_misses"`
	RequestsTotal            uint64            `json:"requests_total"`
	AverageRequestDurationMs float64           `json:"average_request_duration_ms"`
	ConflictsDetected        map[string]uint64 `json:"conflicts_detected"`
	ResolverChanges          uint64            `json:"resolver_changes"`
	UnresolvedSessions       uint64            `json:"unresolved_sessions"`
	ExportJobs               map[string]uint64 `json:"export_jobs"`
	Goroutines               int               `json:"goroutines"`
	GeneratedAt              time.Time         `json:"generated_at"`
}
