package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorRedirect(w http.ResponseWriter, status int, msg, redirect string) {
	writeJSON(w, status, errorResponse{Error: msg, Redirect: redirect})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// bearerToken extracts the token from the Authorization header; empty when
// absent or malformed.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var conflict *domain.ErrConflict
	var provisioning *domain.ErrProvisioning
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeErrorRedirect(w, http.StatusUnauthorized, err.Error(), "/login")
	case errors.As(err, &forbidden):
		logger.Warn("wrong role for view", zap.String("redirect", forbidden.Redirect))
		writeErrorRedirect(w, http.StatusForbidden, "Acesso não permitido para este perfil", forbidden.Redirect)
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &provisioning):
		logger.Error("provisioning failed",
			zap.String("step", provisioning.Step),
			zap.Error(provisioning.Err),
		)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Serviço temporariamente indisponível")
	case errors.As(err, &external):
		logger.Error("external service error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Erro ao comunicar com o serviço externo")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
