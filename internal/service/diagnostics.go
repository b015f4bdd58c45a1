package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var diagTracer = otel.Tracer("service/diagnostics")

// probedTables is the schema surface the battery verifies, in display order.
var probedTables = []string{"users", "professionals", "evaluations", "leads"}

// DiagnosticsService runs the environment check battery against the managed
// backend. Every probe is independent; one failing never stops the rest.
// Write and read probes run under the anon key so the battery observes the
// backend exactly as a logged-out browser would, RLS included.
type DiagnosticsService struct {
	storage port.StorageAPI
	prober  port.Prober
	bucket  string
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDiagnosticsService creates the diagnostics runner.
func NewDiagnosticsService(storage port.StorageAPI, prober port.Prober, bucket string, metrics *observability.Metrics, logger *zap.Logger) *DiagnosticsService {
	return &DiagnosticsService{
		storage: storage,
		prober:  prober,
		bucket:  bucket,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes the full battery in its fixed order and returns every result.
func (s *DiagnosticsService) Run(ctx context.Context) *domain.DiagnosticsReport {
	ctx, span := diagTracer.Start(ctx, "Diagnostics.Run")
	defer span.End()

	start := time.Now()
	checks := []domain.CheckResult{
		s.checkConnection(ctx),
		s.checkTables(ctx),
		s.checkInsert(ctx),
		s.checkRead(ctx),
		s.checkStorage(ctx),
		s.checkRLS(ctx),
	}

	for _, c := range checks {
		s.metrics.IncrDiagnosticsCheck(string(c.Status))
		if c.Status != domain.CheckSuccess {
			s.logger.Warn("diagnostic probe not clean",
				zap.String("check", c.Name),
				zap.String("status", string(c.Status)),
				zap.String("message", c.Message),
			)
		}
	}

	return &domain.DiagnosticsReport{
		Checks:     checks,
		RanAt:      start.UTC().Format(time.RFC3339),
		DurationMs: time.Since(start).Milliseconds(),
	}
}

func (s *DiagnosticsService) checkConnection(ctx context.Context) domain.CheckResult {
	if err := s.prober.ProbeTable(ctx, "users"); err != nil {
		return domain.CheckResult{
			Name:     "Conexão Supabase",
			Status:   domain.CheckError,
			Message:  "Falha ao conectar: " + domain.RemoteMessage(err),
			Solution: "Verifique SUPABASE_URL e as chaves de acesso nas variáveis de ambiente",
		}
	}
	return domain.CheckResult{
		Name:    "Conexão Supabase",
		Status:  domain.CheckSuccess,
		Message: "Conexão estabelecida com sucesso",
	}
}

func (s *DiagnosticsService) checkTables(ctx context.Context) domain.CheckResult {
	var (
		mu      sync.Mutex
		missing []string
		wg      sync.WaitGroup
	)

	// All four probes run concurrently; a failure on one table must not
	// cancel the others, so no errgroup here.
	for _, table := range probedTables {
		wg.Add(1)
		go func(table string) {
			defer wg.Done()
			if err := s.prober.ProbeTable(ctx, table); err != nil {
				mu.Lock()
				missing = append(missing, table)
				mu.Unlock()
			}
		}(table)
	}
	wg.Wait()

	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.CheckResult{
			Name:     "Verificar Tabelas",
			Status:   domain.CheckError,
			Message:  "Tabelas faltando ou inacessíveis: " + strings.Join(missing, ", "),
			Solution: "Execute o script SQL de criação das tabelas no Supabase",
			Data:     map[string]any{"missing": missing},
		}
	}
	return domain.CheckResult{
		Name:    "Verificar Tabelas",
		Status:  domain.CheckSuccess,
		Message: "Todas as tabelas existem",
		Data:    map[string]any{"tables": probedTables},
	}
}

func (s *DiagnosticsService) checkInsert(ctx context.Context) domain.CheckResult {
	probe := &domain.User{
		ID:    uuid.NewString(),
		Name:  "Usuário Teste",
		Email: fmt.Sprintf("teste_%d@example.com", time.Now().Unix()),
		Type:  domain.UserTypeClient,
	}

	if err := s.prober.ProbeInsertUser(ctx, probe); err != nil {
		if domain.IsPolicyDenied(err) {
			return domain.CheckResult{
				Name:    "Inserir Usuário Teste",
				Status:  domain.CheckWarning,
				Message: "RLS bloqueou a inserção (esperado com políticas ativas)",
			}
		}
		return domain.CheckResult{
			Name:     "Inserir Usuário Teste",
			Status:   domain.CheckError,
			Message:  "Erro ao inserir: " + domain.RemoteMessage(err),
			Solution: "Verifique o schema da tabela users",
		}
	}
	return domain.CheckResult{
		Name:    "Inserir Usuário Teste",
		Status:  domain.CheckSuccess,
		Message: "Usuário teste inserido com sucesso",
		Data:    map[string]any{"id": probe.ID, "email": probe.Email},
	}
}

func (s *DiagnosticsService) checkRead(ctx context.Context) domain.CheckResult {
	rows, err := s.prober.ProbeListUsers(ctx, 5)
	if err != nil {
		return domain.CheckResult{
			Name:     "Ler Dados",
			Status:   domain.CheckError,
			Message:  "Erro ao ler dados: " + domain.RemoteMessage(err),
			Solution: "Verifique as políticas de select da tabela users",
		}
	}
	if len(rows) == 0 {
		return domain.CheckResult{
			Name:    "Ler Dados",
			Status:  domain.CheckWarning,
			Message: "Nenhum usuário encontrado na tabela",
		}
	}
	return domain.CheckResult{
		Name:    "Ler Dados",
		Status:  domain.CheckSuccess,
		Message: fmt.Sprintf("%d usuário(s) lido(s) com sucesso", len(rows)),
		Data:    map[string]any{"count": len(rows)},
	}
}

func (s *DiagnosticsService) checkStorage(ctx context.Context) domain.CheckResult {
	bucket, err := s.storage.GetBucket(ctx, s.bucket)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.CheckResult{
				Name:     "Verificar Storage",
				Status:   domain.CheckWarning,
				Message:  fmt.Sprintf("Bucket %q não encontrado", s.bucket),
				Solution: fmt.Sprintf("Crie o bucket %q no Supabase Storage", s.bucket),
			}
		}
		return domain.CheckResult{
			Name:     "Verificar Storage",
			Status:   domain.CheckError,
			Message:  "Erro ao verificar storage: " + domain.RemoteMessage(err),
			Solution: "Verifique as credenciais de acesso ao Storage",
		}
	}
	return domain.CheckResult{
		Name:    "Verificar Storage",
		Status:  domain.CheckSuccess,
		Message: fmt.Sprintf("Bucket %q encontrado", s.bucket),
		Data:    bucket,
	}
}

func (s *DiagnosticsService) checkRLS(ctx context.Context) domain.CheckResult {
	// Informational only: both outcomes are legitimate configurations. Only
	// a structured rejection counts as a policy observation; anything else
	// (network down, bad URL) is a probe failure, not RLS at work.
	err := s.prober.ProbeUnauthenticated(ctx, "users")
	if err == nil {
		return domain.CheckResult{
			Name:    "Verificar RLS",
			Status:  domain.CheckSuccess,
			Message: "Leitura anônima permitida na tabela users",
		}
	}

	var remoteErr *domain.RemoteError
	if errors.As(err, &remoteErr) {
		return domain.CheckResult{
			Name:     "Verificar RLS",
			Status:   domain.CheckWarning,
			Message:  "Leitura anônima bloqueada pelas políticas RLS",
			Solution: "Ajuste as políticas RLS se a leitura pública for necessária",
		}
	}
	return domain.CheckResult{
		Name:     "Verificar RLS",
		Status:   domain.CheckError,
		Message:  "Erro ao verificar RLS: " + err.Error(),
		Solution: "Verifique a conectividade com o Supabase",
	}
}
