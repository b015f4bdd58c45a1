package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/handler"
	"github.com/estetavision/esteta-bff-go/internal/infra/cache"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

// fakeBackend implements every port against in-memory fixtures. Tokens map
// straight to identities; "tok-client" and "tok-pro" are pre-seeded.
type fakeBackend struct {
	users         map[string]*domain.User
	professionals map[string]*domain.Professional
	tokens        map[string]string // access token -> identity id
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users: map[string]*domain.User{
			"uid-client": {ID: "uid-client", Name: "Maria", Email: "maria@example.com", Type: domain.UserTypeClient},
			"uid-pro":    {ID: "uid-pro", Name: "Dra. Ana", Email: "ana@example.com", Type: domain.UserTypeProfessional},
		},
		professionals: map[string]*domain.Professional{
			"uid-pro": {ID: "pro-1", UserID: "uid-pro", Specialty: "Dermatologia"},
		},
		tokens: map[string]string{
			"tok-client": "uid-client",
			"tok-pro":    "uid-pro",
		},
	}
}

func (f *fakeBackend) SignUp(_ context.Context, email, _ string, md map[string]any) (*domain.Identity, error) {
	return &domain.Identity{ID: "uid-new", Email: email, Metadata: md}, nil
}

func (f *fakeBackend) SignInWithPassword(_ context.Context, email, password string) (*domain.Session, error) {
	if password != "secret123" {
		return nil, &domain.RemoteError{Status: 400, Message: "Invalid login credentials"}
	}
	for id, u := range f.users {
		if u.Email == email {
			tok := "tok-" + id
			f.tokens[tok] = id
			return &domain.Session{AccessToken: tok, ExpiresIn: 3600}, nil
		}
	}
	f.tokens["tok-new"] = "uid-new"
	return &domain.Session{AccessToken: "tok-new", ExpiresIn: 3600}, nil
}

func (f *fakeBackend) GetIdentity(_ context.Context, accessToken string) (*domain.Identity, error) {
	id, ok := f.tokens[accessToken]
	if !ok {
		return nil, &domain.RemoteError{Status: 401, Message: "invalid JWT"}
	}
	return &domain.Identity{ID: id}, nil
}

func (f *fakeBackend) SignOut(_ context.Context, _ string) error { return nil }

func (f *fakeBackend) AdminDeleteIdentity(_ context.Context, _ string) error { return nil }

func (f *fakeBackend) GetUserByID(_ context.Context, id, _ string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return u, nil
}

func (f *fakeBackend) InsertUser(_ context.Context, user *domain.User, _ string) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeBackend) GetProfessionalByUserID(_ context.Context, userID, _ string) (*domain.Professional, error) {
	p, ok := f.professionals[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "professional", ID: userID}
	}
	return p, nil
}

func (f *fakeBackend) InsertProfessional(_ context.Context, p *domain.Professional, _ string) error {
	f.professionals[p.UserID] = p
	return nil
}

func (f *fakeBackend) ListEvaluationsByUser(_ context.Context, userID, _ string) ([]domain.Evaluation, error) {
	return []domain.Evaluation{{ID: "eval-1", UserID: userID, AreaFocus: "Facial"}}, nil
}

func (f *fakeBackend) ListLatestEvaluations(_ context.Context, _ int) ([]domain.Evaluation, error) {
	return []domain.Evaluation{{ID: "eval-1", AreaFocus: "Facial"}}, nil
}

func (f *fakeBackend) ListLeadsByProfessional(_ context.Context, _, _ string) ([]domain.Lead, error) {
	return []domain.Lead{}, nil
}

func (f *fakeBackend) InsertLead(_ context.Context, lead *domain.Lead, _ string) (*domain.Lead, error) {
	created := *lead
	created.ID = "lead-1"
	return &created, nil
}

func (f *fakeBackend) GetBucket(_ context.Context, name string) (map[string]any, error) {
	return map[string]any{"name": name}, nil
}

func (f *fakeBackend) ProbeTable(_ context.Context, _ string) error { return nil }

func (f *fakeBackend) ProbeUnauthenticated(_ context.Context, _ string) error {
	return &domain.RemoteError{Status: 401, Code: "42501", Message: "permission denied for table users"}
}

func (f *fakeBackend) ProbeInsertUser(_ context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeBackend) ProbeListUsers(_ context.Context, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	backend := newFakeBackend()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	policy := service.ProvisioningPolicy{
		SignInPolicy:  "best-effort",
		ReadyTimeout:  50 * time.Millisecond,
		ReadyInterval: 5 * time.Millisecond,
	}

	return handler.NewRouter(handler.Deps{
		Provisioning: service.NewProvisioningService(backend, backend, backend, policy, metrics, logger),
		Sessions:     service.NewSessionService(backend, backend, "", logger),
		Dashboards: service.NewDashboardService(backend, backend, backend,
			cache.New[[]domain.Evaluation](time.Minute), metrics, logger),
		Leads:       service.NewLeadService(backend, backend, metrics, logger),
		Diagnostics: service.NewDiagnosticsService(backend, backend, "evaluation-photos", metrics, logger),
		Prober:      backend,
		Metrics:     metrics,
		Logger:      logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRegister_ValidationError(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/auth/register", "", map[string]any{
		"name": "Maria", "email": "maria@example.com",
		"password": "abc", "confirmPassword": "abc", "type": "client",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "A senha deve ter no mínimo 6 caracteres" {
		t.Errorf("unexpected error: %q", resp["error"])
	}
}

func TestRegister_ClientCreated(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/auth/register", "", map[string]any{
		"name": "Novo", "email": "novo@example.com",
		"password": "secret123", "confirmPassword": "secret123", "type": "client",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.RegisterResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Redirect != "/dashboard-cliente" {
		t.Errorf("unexpected redirect: %q", resp.Redirect)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email": "maria@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDashboard_NoSessionRedirectsToLogin(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/v1/dashboard/client", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["redirect"] != "/login" {
		t.Errorf("expected login redirect, got %q", resp["redirect"])
	}
}

func TestDashboard_WrongRoleRedirects(t *testing.T) {
	// A client hitting the professional view is sent to its own dashboard.
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/v1/dashboard/professional", "tok-client", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["redirect"] != "/dashboard-cliente" {
		t.Errorf("expected client dashboard redirect, got %q", resp["redirect"])
	}
}

func TestDashboard_ClientView(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/v1/dashboard/client", "tok-client", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dash domain.ClientDashboard
	json.Unmarshal(rec.Body.Bytes(), &dash)
	if len(dash.Evaluations) != 1 || dash.User.ID != "uid-client" {
		t.Errorf("unexpected dashboard: %s", rec.Body.String())
	}
}

func TestDashboard_ProfessionalView(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/v1/dashboard/professional", "tok-pro", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dash domain.ProfessionalDashboard
	json.Unmarshal(rec.Body.Bytes(), &dash)
	if dash.Professional == nil || dash.Professional.ID != "pro-1" {
		t.Errorf("unexpected dashboard: %s", rec.Body.String())
	}
}

func TestLeads_ClientForbidden(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/leads", "tok-client",
		map[string]any{"evaluationId": "eval-1"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestLeads_ProfessionalRegistersInterest(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/leads", "tok-pro",
		map[string]any{"evaluationId": "eval-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.RegisterInterestResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "Interesse registrado com sucesso!" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestDiagnosticsRun(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/v1/diagnostics/run", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report domain.DiagnosticsReport
	json.Unmarshal(rec.Body.Bytes(), &report)
	if len(report.Checks) != 6 {
		t.Errorf("expected 6 checks, got %d", len(report.Checks))
	}
}

func TestMetricsSummary(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodGet, "/healthz", "", nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary domain.MetricsSummary
	json.Unmarshal(rec.Body.Bytes(), &summary)
	if summary.TotalRequests < 1 {
		t.Errorf("expected at least one counted request, got %d", summary.TotalRequests)
	}
}
