package domain

// OpsMetrics is the operational summary served by GET /v1/metrics/summary.
type OpsMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	SnapshotsSeen int64   `json:"snapshots_seen"`
	RecomputesRun int64   `json:"recomputes_run"`
	StreamClients int64   `json:"stream_clients"`
	Period        string  `json:"period"`
}
