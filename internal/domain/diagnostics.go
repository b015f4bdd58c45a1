package domain

// ============================================================
// Diagnostics battery
// ============================================================

// CheckStatus is the outcome class of a single diagnostic probe.
type CheckStatus string

const (
	CheckSuccess CheckStatus = "success"
	CheckWarning CheckStatus = "warning"
	CheckError   CheckStatus = "error"
)

// CheckResult is one entry of the diagnostics battery. Solution carries
// remediation text for warning/error outcomes.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Solution string      `json:"solution,omitempty"`
	Data     any         `json:"data,omitempty"`
}

// DiagnosticsReport is the full battery output, in execution order.
type DiagnosticsReport struct {
	Checks     []CheckResult `json:"checks"`
	RanAt      string        `json:"ranAt"`
	DurationMs int64         `json:"durationMs"`
}
