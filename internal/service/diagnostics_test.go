package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

type mockProber struct {
	mu          sync.Mutex
	failTables  map[string]error
	unauthErr   error
	insertErr   error
	listUsers   []domain.User
	listErr     error
	probedCalls []string

	lastInserted *domain.User
}

func (m *mockProber) ProbeTable(_ context.Context, table string) error {
	m.mu.Lock()
	m.probedCalls = append(m.probedCalls, table)
	m.mu.Unlock()
	if m.failTables != nil {
		return m.failTables[table]
	}
	return nil
}

func (m *mockProber) ProbeUnauthenticated(_ context.Context, _ string) error {
	return m.unauthErr
}

func (m *mockProber) ProbeInsertUser(_ context.Context, user *domain.User) error {
	m.lastInserted = user
	return m.insertErr
}

func (m *mockProber) ProbeListUsers(_ context.Context, _ int) ([]domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listUsers, nil
}

type mockStorageAPI struct {
	bucket map[string]any
	err    error
}

func (m *mockStorageAPI) GetBucket(_ context.Context, _ string) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bucket, nil
}

func newDiagnostics(storage *mockStorageAPI, prober *mockProber) *service.DiagnosticsService {
	return service.NewDiagnosticsService(storage, prober, "evaluation-photos",
		observability.NewMetrics(), zap.NewNop())
}

func healthyProber() *mockProber {
	return &mockProber{listUsers: []domain.User{{ID: "u1"}, {ID: "u2"}}}
}

func healthyStorage() *mockStorageAPI {
	return &mockStorageAPI{bucket: map[string]any{"name": "evaluation-photos", "public": false}}
}

func TestDiagnostics_AllHealthy(t *testing.T) {
	svc := newDiagnostics(healthyStorage(), healthyProber())

	report := svc.Run(context.Background())
	if len(report.Checks) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(report.Checks))
	}

	wantNames := []string{
		"Conexão Supabase",
		"Verificar Tabelas",
		"Inserir Usuário Teste",
		"Ler Dados",
		"Verificar Storage",
		"Verificar RLS",
	}
	for i, want := range wantNames {
		if report.Checks[i].Name != want {
			t.Errorf("check %d: expected %q, got %q", i, want, report.Checks[i].Name)
		}
		if report.Checks[i].Status != domain.CheckSuccess {
			t.Errorf("check %q: expected success, got %s (%s)",
				report.Checks[i].Name, report.Checks[i].Status, report.Checks[i].Message)
		}
	}
}

func TestDiagnostics_MissingTablesNamed(t *testing.T) {
	prober := healthyProber()
	prober.failTables = map[string]error{
		"leads":         errors.New(`relation "public.leads" does not exist`),
		"professionals": errors.New(`relation "public.professionals" does not exist`),
	}
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	check := report.Checks[1]
	if check.Status != domain.CheckError {
		t.Fatalf("expected error status, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "leads") || !strings.Contains(check.Message, "professionals") {
		t.Errorf("missing tables must be named, got %q", check.Message)
	}
	if strings.Contains(check.Message, "evaluations") {
		t.Errorf("present tables must not be named, got %q", check.Message)
	}
}

func TestDiagnostics_WriteProbeRLSIsWarning(t *testing.T) {
	prober := healthyProber()
	prober.insertErr = &domain.RemoteError{Status: 403, Code: "42501", Message: "new row violates row-level security policy"}
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	check := report.Checks[2]
	if check.Status != domain.CheckWarning {
		t.Errorf("an anonymous insert rejected by policy is an expected configuration, got %s", check.Status)
	}
}

func TestDiagnostics_WriteProbeOtherErrorIsError(t *testing.T) {
	prober := healthyProber()
	prober.insertErr = &domain.RemoteError{Status: 400, Code: "23502", Message: "null value in column"}
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	if report.Checks[2].Status != domain.CheckError {
		t.Errorf("expected error status, got %s", report.Checks[2].Status)
	}
}

func TestDiagnostics_EmptyTableIsWarning(t *testing.T) {
	prober := healthyProber()
	prober.listUsers = []domain.User{}
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	if report.Checks[3].Status != domain.CheckWarning {
		t.Errorf("zero rows should warn, got %s", report.Checks[3].Status)
	}
}

func TestDiagnostics_MissingBucketIsWarning(t *testing.T) {
	storage := &mockStorageAPI{err: &domain.ErrNotFound{Resource: "bucket", ID: "evaluation-photos"}}
	svc := newDiagnostics(storage, healthyProber())

	report := svc.Run(context.Background())
	check := report.Checks[4]
	if check.Status != domain.CheckWarning {
		t.Fatalf("absent bucket should warn, got %s", check.Status)
	}
	if check.Solution == "" {
		t.Error("expected remediation text for the missing bucket")
	}
}

func TestDiagnostics_OpenAnonReadIsSuccess(t *testing.T) {
	svc := newDiagnostics(healthyStorage(), healthyProber())

	report := svc.Run(context.Background())
	check := report.Checks[5]
	if check.Status != domain.CheckSuccess {
		t.Errorf("permissive anon read is the healthy outcome, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "permitida") {
		t.Errorf("unexpected message: %q", check.Message)
	}
}

func TestDiagnostics_BlockedAnonReadIsWarning(t *testing.T) {
	prober := healthyProber()
	prober.unauthErr = &domain.RemoteError{Status: 401, Code: "42501", Message: "permission denied for table users"}
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	check := report.Checks[5]
	if check.Status != domain.CheckWarning {
		t.Errorf("restrictive policies should warn, not fail, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "bloqueada") {
		t.Errorf("unexpected message: %q", check.Message)
	}
}

func TestDiagnostics_AnonReadOutageIsError(t *testing.T) {
	prober := healthyProber()
	prober.unauthErr = errors.New("dial tcp: connection refused")
	svc := newDiagnostics(healthyStorage(), prober)

	report := svc.Run(context.Background())
	if report.Checks[5].Status != domain.CheckError {
		t.Errorf("a failed probe must not be reported as policy enforcement, got %s",
			report.Checks[5].Status)
	}
}

func TestDiagnostics_ChecksAreIndependent(t *testing.T) {
	// Everything broken at once: every check must still report.
	prober := &mockProber{
		failTables: map[string]error{
			"users": errors.New("down"), "professionals": errors.New("down"),
			"evaluations": errors.New("down"), "leads": errors.New("down"),
		},
		insertErr: errors.New("down"),
		listErr:   errors.New("down"),
		unauthErr: errors.New("down"),
	}
	storage := &mockStorageAPI{err: errors.New("down")}
	svc := newDiagnostics(storage, prober)

	report := svc.Run(context.Background())
	if len(report.Checks) != 6 {
		t.Fatalf("expected all 6 checks to run, got %d", len(report.Checks))
	}
}
