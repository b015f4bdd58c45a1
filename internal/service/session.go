// Package service — SessionService is the session guard: it resolves the
// identity behind a request and the profile row that decides its role.
package service

import (
	"context"
	"fmt"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var sessionTracer = otel.Tracer("service/session")

// goTrueAudience is the audience GoTrue stamps on end-user access tokens.
const goTrueAudience = "authenticated"

// SessionService resolves sessions and enforces role gates. It holds no
// state between requests; every protected view resolves fresh.
type SessionService struct {
	auth      port.AuthAPI
	users     port.UserStore
	jwtSecret []byte
	logger    *zap.Logger
}

// NewSessionService creates the session guard. With a non-empty jwtSecret
// tokens are verified locally; otherwise each resolution round-trips to
// the auth service.
func NewSessionService(auth port.AuthAPI, users port.UserStore, jwtSecret string, logger *zap.Logger) *SessionService {
	return &SessionService{
		auth:      auth,
		users:     users,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// Resolve turns a bearer token into the authenticated session context:
// identity id plus profile row. Any failure along the way — bad token,
// missing profile, remote error — comes back as ErrUnauthorized, which the
// handler layer translates into a login redirect.
func (s *SessionService) Resolve(ctx context.Context, accessToken string) (*domain.SessionContext, error) {
	ctx, span := sessionTracer.Start(ctx, "Session.Resolve")
	defer span.End()

	if accessToken == "" {
		return nil, &domain.ErrUnauthorized{Message: "Sessão não encontrada"}
	}

	identityID, err := s.identityID(ctx, accessToken)
	if err != nil {
		s.logger.Debug("session: token rejected", zap.Error(err))
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}

	user, err := s.users.GetUserByID(ctx, identityID, accessToken)
	if err != nil {
		// A remote failure during resolution counts as unauthenticated.
		s.logger.Warn("session: profile lookup failed",
			zap.String("identity_id", identityID),
			zap.Error(err),
		)
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}

	return &domain.SessionContext{
		IdentityID:  identityID,
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// RequireRole gates a view to one role. The wrong role gets a redirect to
// its own dashboard rather than a bare rejection.
func (s *SessionService) RequireRole(sess *domain.SessionContext, role domain.UserType) error {
	if sess.User.Type == role {
		return nil
	}
	return &domain.ErrForbidden{Redirect: sess.User.Type.DashboardPath()}
}

// identityID extracts the subject from the token: locally when the GoTrue
// JWT secret is configured, via the auth service otherwise.
func (s *SessionService) identityID(ctx context.Context, accessToken string) (string, error) {
	if len(s.jwtSecret) == 0 {
		identity, err := s.auth.GetIdentity(ctx, accessToken)
		if err != nil {
			return "", err
		}
		return identity.ID, nil
	}

	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithAudience(goTrueAudience))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
