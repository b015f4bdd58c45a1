// Package domain holds the core entities and API types of the Esteta Vision BFF.
// The shapes mirror the Supabase tables the platform provisions externally;
// this code reads and writes them but never owns their schema.
package domain

// UserType discriminates the two account roles. A user's type is immutable
// after provisioning and decides which dashboard and secondary table apply.
type UserType string

const (
	UserTypeClient       UserType = "client"
	UserTypeProfessional UserType = "professional"
)

// Valid reports whether t is one of the two known roles.
func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeProfessional
}

// DashboardPath returns the frontend route for the role's dashboard.
func (t UserType) DashboardPath() string {
	if t == UserTypeProfessional {
		return "/dashboard-profissional"
	}
	return "/dashboard-cliente"
}

// User is the application-level profile row ("users" table), keyed by the
// GoTrue identity id.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Type      UserType `json:"type"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Professional is the role-specific extension row ("professionals" table),
// one-to-one with a User of type professional.
type Professional struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Specialty  string   `json:"specialty"`
	City       string   `json:"city"`
	ClinicName string   `json:"clinic_name"`
	Focus      []string `json:"focus"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// FocusAreas are the only values accepted in Professional.Focus.
var FocusAreas = []string{"Facial", "Capilar", "Corporal"}

// Evaluation is a client-submitted case. Rows are created by a flow outside
// this service; the BFF only reads them.
type Evaluation struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	AreaFocus       string   `json:"area_focus"`
	SubArea         string   `json:"sub_area"`
	Concerns        []string `json:"concerns"`
	Photos          []string `json:"photos"`
	AIPreviewURL    *string  `json:"ai_preview_url"`
	AIComparisonURL *string  `json:"ai_comparison_url"`
	CreatedAt       string   `json:"created_at"`
}

// Lead statuses, in lifecycle order.
const (
	LeadStatusProspect   = "prospect"
	LeadStatusInterested = "interessado"
	LeadStatusConverted  = "convertido"
)

// Lead records a professional's expressed interest in an evaluation.
// The embedded evaluation/user fields come from a PostgREST resource
// embedding and are only populated on dashboard reads.
type Lead struct {
	ID             string          `json:"id"`
	EvaluationID   string          `json:"evaluation_id,omitempty"`
	ProfessionalID string          `json:"professional_id,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at"`
	Evaluation     *LeadEvaluation `json:"evaluation,omitempty"`
}

// LeadEvaluation is the slice of an evaluation embedded in a lead row.
type LeadEvaluation struct {
	AreaFocus string    `json:"area_focus"`
	SubArea   string    `json:"sub_area"`
	User      *LeadUser `json:"user,omitempty"`
}

// LeadUser is the owning client's name/email embedded through the evaluation.
type LeadUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
