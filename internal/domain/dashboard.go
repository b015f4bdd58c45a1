package domain

// ============================================================
// Dashboard API Responses
// ============================================================

// ClientDashboard is returned by GET /v1/dashboard/client.
type ClientDashboard struct {
	User        *User        `json:"user"`
	Evaluations []Evaluation `json:"evaluations"`
}

// ProfessionalDashboard is returned by GET /v1/dashboard/professional.
type ProfessionalDashboard struct {
	User         *User         `json:"user"`
	Professional *Professional `json:"professional"`
	Leads        []Lead        `json:"leads"`
	Evaluations  []Evaluation  `json:"evaluations"`
	Summary      LeadSummary   `json:"summary"`
}

// LeadSummary aggregates the professional's pipeline. Counts are
// de-duplicated by evaluation id so a double-registered interest does not
// inflate the numbers.
type LeadSummary struct {
	TotalLeads int `json:"totalLeads"`
	Prospects  int `json:"prospects"`
	Interested int `json:"interested"`
	Converted  int `json:"converted"`
}

// RegisterInterestRequest is the body of POST /v1/leads.
type RegisterInterestRequest struct {
	EvaluationID string `json:"evaluationId"`
}

// RegisterInterestResponse confirms a created lead.
type RegisterInterestResponse struct {
	Lead    *Lead  `json:"lead"`
	Message string `json:"message"`
}
