package handler

import (
	"context"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionMiddleware resolves the bearer token into a full session context
// (identity plus profile row) and injects it. Resolution happens on every
// request; nothing about the session is cached between requests.
func SessionMiddleware(sessions *service.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				logger.Debug("session resolution failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the resolved session injected by
// SessionMiddleware. Nil outside the protected route group.
func SessionFromContext(ctx context.Context) *domain.SessionContext {
	sess, _ := ctx.Value(sessionKey).(*domain.SessionContext)
	return sess
}

// RequireRole gates a route group to one role; the wrong role gets its own
// dashboard route back in the redirect field.
func RequireRole(sessions *service.SessionService, role domain.UserType, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				writeErrorRedirect(w, http.StatusUnauthorized, "Sessão não encontrada", "/login")
				return
			}
			if err := sessions.RequireRole(sess, role); err != nil {
				handleServiceError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
