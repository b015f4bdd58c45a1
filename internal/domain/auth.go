package domain

// ============================================================
// Auth API Requests & Responses
// ============================================================

// Identity is an authentication record in GoTrue. Its lifecycle belongs
// entirely to the remote auth service.
type Identity struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is an established GoTrue session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// RegisterRequest is the provisioning input. The professional-only fields
// are required iff Type == professional.
type RegisterRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	Type            UserType `json:"type"`

	Specialty  string   `json:"specialty,omitempty"`
	City       string   `json:"city,omitempty"`
	ClinicName string   `json:"clinicName,omitempty"`
	Focus      []string `json:"focus,omitempty"`
}

// RegisterResponse reports a completed provisioning flow. Warning carries a
// non-fatal sign-in failure when the flow ran under the best-effort policy.
type RegisterResponse struct {
	UserID   string   `json:"userId"`
	Type     UserType `json:"type"`
	Redirect string   `json:"redirect"`
	Warning  string   `json:"warning,omitempty"`
}

// LoginRequest carries the password-grant credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the GoTrue session plus the resolved profile and
// the role-appropriate dashboard route.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
	User         *User  `json:"user"`
	Redirect     string `json:"redirect"`
}

// SessionContext is the per-request resolution the session guard produces:
// the authenticated identity and its profile row. It is resolved fresh on
// every protected request and never cached.
type SessionContext struct {
	IdentityID  string
	AccessToken string
	User        *User
}
