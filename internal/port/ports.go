// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// AuthAPI is the GoTrue surface the BFF consumes. Identity lifecycle lives
// entirely on the remote side; these calls never touch local state.
type AuthAPI interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	GetIdentity(ctx context.Context, accessToken string) (*domain.Identity, error)
	SignOut(ctx context.Context, accessToken string) error

	// AdminDeleteIdentity removes an identity with the service role key.
	// Used only as the provisioning compensating action.
	AdminDeleteIdentity(ctx context.Context, identityID string) error
}

// UserStore reads and writes the "users" profile table.
// accessToken, when non-empty, scopes the call to the user's session so
// row-level security policies see an authenticated request.
type UserStore interface {
	GetUserByID(ctx context.Context, id, accessToken string) (*domain.User, error)
	InsertUser(ctx context.Context, user *domain.User, accessToken string) error
}

// ProfessionalStore reads and writes the "professionals" extension table.
type ProfessionalStore interface {
	GetProfessionalByUserID(ctx context.Context, userID, accessToken string) (*domain.Professional, error)
	InsertProfessional(ctx context.Context, p *domain.Professional, accessToken string) error
}

// EvaluationStore reads the "evaluations" table. Evaluations are created by
// a flow outside this service; there is deliberately no insert here.
type EvaluationStore interface {
	ListEvaluationsByUser(ctx context.Context, userID, accessToken string) ([]domain.Evaluation, error)
	ListLatestEvaluations(ctx context.Context, limit int) ([]domain.Evaluation, error)
}

// LeadStore reads and writes the "leads" table.
type LeadStore interface {
	ListLeadsByProfessional(ctx context.Context, professionalID, accessToken string) ([]domain.Lead, error)
	InsertLead(ctx context.Context, lead *domain.Lead, accessToken string) (*domain.Lead, error)
}

// StorageAPI is the object-storage surface: bucket metadata lookup only.
type StorageAPI interface {
	GetBucket(ctx context.Context, name string) (map[string]any, error)
}

// Prober exposes the raw probes the diagnostics battery needs beyond the
// typed stores: table presence, policy characterization, and write/read
// probes that run under the anon key the way a logged-out browser would.
type Prober interface {
	ProbeTable(ctx context.Context, table string) error
	ProbeUnauthenticated(ctx context.Context, table string) error
	ProbeInsertUser(ctx context.Context, user *domain.User) error
	ProbeListUsers(ctx context.Context, limit int) ([]domain.User, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
