// Package service — ProvisioningService runs the multi-step account
// creation flow: identity, session, profile row, role-specific row.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/config"
	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var provisioningTracer = otel.Tracer("service/provisioning")

const minPasswordLen = 6

// ProvisioningPolicy captures the configurable decisions of the flow:
// what to do when the automatic sign-in fails, whether to compensate a
// fatal failure by deleting the fresh identity, and how long to wait for
// the new session to become usable.
type ProvisioningPolicy struct {
	SignInPolicy      string
	RollbackOnFailure bool
	ReadyTimeout      time.Duration
	ReadyInterval     time.Duration
}

// PolicyFromConfig lifts the config knobs into a ProvisioningPolicy.
func PolicyFromConfig(cfg *config.Config) ProvisioningPolicy {
	return ProvisioningPolicy{
		SignInPolicy:      cfg.SignInPolicy,
		RollbackOnFailure: cfg.RollbackOnFailure,
		ReadyTimeout:      cfg.SessionReadyTimeout,
		ReadyInterval:     cfg.SessionReadyInterval,
	}
}

// ProvisioningService orchestrates registration against the managed backend.
type ProvisioningService struct {
	auth          port.AuthAPI
	users         port.UserStore
	professionals port.ProfessionalStore
	policy        ProvisioningPolicy
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewProvisioningService creates the provisioning service.
func NewProvisioningService(auth port.AuthAPI, users port.UserStore, professionals port.ProfessionalStore, policy ProvisioningPolicy, metrics *observability.Metrics, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{
		auth:          auth,
		users:         users,
		professionals: professionals,
		policy:        policy,
		metrics:       metrics,
		logger:        logger,
	}
}

// Register runs the provisioning flow. Steps run strictly in order; local
// validation happens before any remote call, so a rejected request has no
// side effect at all.
func (s *ProvisioningService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := provisioningTracer.Start(ctx, "Provisioning.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.type", string(req.Type)))

	if err := validateRegistration(req); err != nil {
		s.metrics.IncrProvisioning("validation_failed")
		return nil, err
	}

	// Step 1: create the identity. Name and role travel as metadata so
	// the auth record is self-describing even before the profile exists.
	identity, err := s.auth.SignUp(ctx, req.Email, req.Password, map[string]any{
		"name":      req.Name,
		"user_type": string(req.Type),
	})
	if err != nil {
		s.metrics.IncrProvisioning("identity_failed")
		s.metrics.IncrExternalError("auth")
		s.logger.Warn("provisioning: identity creation rejected",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		msg := domain.RemoteMessage(err)
		if strings.Contains(msg, "already registered") || strings.Contains(msg, "already been registered") {
			return nil, &domain.ErrConflict{Message: "Email já cadastrado"}
		}
		return nil, &domain.ErrProvisioning{
			Step:    domain.StepIdentity,
			Message: "Erro ao criar usuário: " + msg,
			Err:     err,
		}
	}

	s.logger.Info("provisioning: identity created",
		zap.String("identity_id", identity.ID),
		zap.String("type", string(req.Type)),
	)

	// Step 2: establish a session so the profile inserts run authenticated.
	var warning string
	session, err := s.auth.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.metrics.IncrExternalError("auth")
		if s.policy.SignInPolicy == config.SignInFailFast {
			s.metrics.IncrProvisioning("identity_failed")
			return nil, &domain.ErrProvisioning{
				Step:    domain.StepSignIn,
				Message: "Conta criada, mas o login automático falhou: " + domain.RemoteMessage(err),
				Err:     err,
			}
		}
		// Best-effort: the identity exists, the user can log in manually.
		s.logger.Warn("provisioning: automatic sign-in failed, continuing",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
		warning = "Login automático falhou; faça login manualmente."
		session = nil
	}

	// Step 3: wait for the session to be usable instead of sleeping a
	// fixed amount. Timing out degrades to a logged warning.
	accessToken := ""
	if session != nil {
		accessToken = session.AccessToken
		if err := s.waitSessionReady(ctx, accessToken); err != nil {
			s.logger.Warn("provisioning: session not ready before profile insert",
				zap.String("identity_id", identity.ID),
				zap.Error(err),
			)
		}
	}

	// Step 4: persist the profile row. Fatal on failure.
	user := &domain.User{
		ID:    identity.ID,
		Name:  req.Name,
		Email: req.Email,
		Type:  req.Type,
	}
	if err := s.users.InsertUser(ctx, user, accessToken); err != nil {
		s.metrics.IncrProvisioning("profile_failed")
		s.metrics.IncrExternalError("rest")
		s.compensate(ctx, identity.ID)
		return nil, &domain.ErrProvisioning{
			Step:    domain.StepProfile,
			Message: "Erro ao salvar dados do usuário: " + domain.RemoteMessage(err),
			Err:     err,
		}
	}

	// Step 5: professionals get their extension row. Fatal on failure,
	// with its own message so the caller can tell the steps apart.
	if req.Type == domain.UserTypeProfessional {
		p := &domain.Professional{
			UserID:     identity.ID,
			Specialty:  req.Specialty,
			City:       req.City,
			ClinicName: req.ClinicName,
			Focus:      req.Focus,
		}
		if err := s.professionals.InsertProfessional(ctx, p, accessToken); err != nil {
			s.metrics.IncrProvisioning("professional_failed")
			s.metrics.IncrExternalError("rest")
			s.compensate(ctx, identity.ID)
			return nil, &domain.ErrProvisioning{
				Step:    domain.StepProfessional,
				Message: "Erro ao salvar dados profissionais: " + domain.RemoteMessage(err),
				Err:     err,
			}
		}
	}

	s.metrics.IncrProvisioning("completed")
	s.logger.Info("provisioning: account created",
		zap.String("user_id", identity.ID),
		zap.String("type", string(req.Type)),
	)

	return &domain.RegisterResponse{
		UserID:   identity.ID,
		Type:     req.Type,
		Redirect: req.Type.DashboardPath(),
		Warning:  warning,
	}, nil
}

// waitSessionReady polls get-user with the fresh token until the auth
// service recognizes it or the policy timeout elapses.
func (s *ProvisioningService) waitSessionReady(ctx context.Context, accessToken string) error {
	deadline := time.Now().Add(s.policy.ReadyTimeout)
	var lastErr error
	for {
		_, lastErr = s.auth.GetIdentity(ctx, accessToken)
		if lastErr == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.policy.ReadyInterval):
		}
	}
}

// compensate deletes the orphaned identity when the rollback policy is on.
// A failed compensation is logged, never surfaced over the original error.
func (s *ProvisioningService) compensate(ctx context.Context, identityID string) {
	if !s.policy.RollbackOnFailure {
		s.logger.Warn("provisioning: fatal failure after identity creation, identity left orphaned",
			zap.String("identity_id", identityID),
		)
		return
	}
	if err := s.auth.AdminDeleteIdentity(ctx, identityID); err != nil {
		s.logger.Error("provisioning: rollback failed, identity left orphaned",
			zap.String("identity_id", identityID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("provisioning: identity rolled back",
		zap.String("identity_id", identityID),
	)
}

// validateRegistration enforces the local rules. Runs before any remote
// call; a failure here guarantees zero side effects.
func validateRegistration(req *domain.RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return &domain.ErrValidation{Field: "common", Message: "Preencha todos os campos obrigatórios"}
	}
	if !req.Type.Valid() {
		return &domain.ErrValidation{Field: "type", Message: "Tipo de usuário inválido"}
	}
	if req.Password != req.ConfirmPassword {
		return &domain.ErrValidation{Field: "confirmPassword", Message: "As senhas não coincidem"}
	}
	if len(req.Password) < minPasswordLen {
		return &domain.ErrValidation{Field: "password", Message: "A senha deve ter no mínimo 6 caracteres"}
	}
	if req.Type == domain.UserTypeProfessional {
		if req.Specialty == "" || req.City == "" || req.ClinicName == "" || len(req.Focus) == 0 {
			return &domain.ErrValidation{Field: "professional", Message: "Profissionais devem preencher todos os campos específicos"}
		}
		for _, f := range req.Focus {
			if !isKnownFocus(f) {
				return &domain.ErrValidation{Field: "focus", Message: "Área de foco inválida: " + f}
			}
		}
	}
	return nil
}

func isKnownFocus(f string) bool {
	for _, known := range domain.FocusAreas {
		if f == known {
			return true
		}
	}
	return false
}
