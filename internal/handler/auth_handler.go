package handler

import (
	"encoding/json"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Autenticação — /v1/auth
// ============================================================

func authRegisterHandler(provisioning *service.ProvisioningService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/register")
		defer span.End()

		var req domain.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := provisioning.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func authLoginHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := sessions.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func authLogoutHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := sessions.Logout(ctx, bearerToken(r)); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Sessão encerrada"})
	}
}
