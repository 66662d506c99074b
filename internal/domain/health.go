package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy or degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth is the result of one dependency check (sqlite, supabase).
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// EngineMetrics is returned by GET /v1/metrics/engine.
type EngineMetrics struct {
	Allocations         int64   `json:"allocations"`
	StructuralOverflows int64   `json:"structuralOverflows"`
	Simulations         int64   `json:"simulations"`
	ForcedPromotions    int64   `json:"forcedPromotions"`
	NarrativeRequests   int64   `json:"narrativeRequests"`
	NarrativeFallbacks  int64   `json:"narrativeFallbacks"`
	FallbackRate        float64 `json:"fallbackRate"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// ListResponse wraps history and catalog lists. Data is never null.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}
