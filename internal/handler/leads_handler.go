package handler

import (
	"encoding/json"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Leads — POST /v1/leads (protected, professional only)
// ============================================================

func registerInterestHandler(leads *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/leads")
		defer span.End()

		var req domain.RegisterInterestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		resp, err := leads.RegisterInterest(ctx, sess, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}
