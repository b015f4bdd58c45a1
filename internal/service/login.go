package service

import (
	"context"
	"errors"

	"github.com/estetavision/esteta-bff-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Login / Logout — POST /v1/auth/login, POST /v1/auth/logout
// ============================================================

// Login establishes a session via the password grant and resolves the
// profile row so the caller knows which dashboard to go to.
func (s *SessionService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := sessionTracer.Start(ctx, "Session.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "credentials", Message: "Preencha todos os campos"}
	}

	session, err := s.auth.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		var remoteErr *domain.RemoteError
		if errors.As(err, &remoteErr) && remoteErr.IsInvalidCredentials() {
			return nil, &domain.ErrUnauthorized{Message: "Email ou senha incorretos"}
		}
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	identity, err := s.auth.GetIdentity(ctx, session.AccessToken)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	user, err := s.users.GetUserByID(ctx, identity.ID, session.AccessToken)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/rest", Err: err}
	}
	if !user.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "Tipo de usuário inválido"}
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("type", string(user.Type)),
	)

	return &domain.LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User:         user,
		Redirect:     user.Type.DashboardPath(),
	}, nil
}

// Logout revokes the session on the auth service.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	ctx, span := sessionTracer.Start(ctx, "Session.Logout")
	defer span.End()

	if err := s.auth.SignOut(ctx, accessToken); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	return nil
}
