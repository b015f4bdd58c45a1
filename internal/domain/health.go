package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSummary is returned by GET /v1/metrics/summary.
type MetricsSummary struct {
	TotalRequests         int64   `json:"totalRequests"`
	ErrorRate             float64 `json:"errorRate"`
	CacheHitRate          float64 `json:"cacheHitRate"`
	ProvisioningCompleted int64   `json:"provisioningCompleted"`
	ProvisioningFailed    int64   `json:"provisioningFailed"`
	ValidationRejections  int64   `json:"validationRejections"`
	DiagnosticsWarnings   int64   `json:"diagnosticsWarnings"`
	DiagnosticsErrors     int64   `json:"diagnosticsErrors"`
	Period                string  `json:"period"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
