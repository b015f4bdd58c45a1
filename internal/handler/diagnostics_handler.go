package handler

import (
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Diagnostics — /v1/diagnostics/run
// ============================================================

func runDiagnosticsHandler(diagnostics *service.DiagnosticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/diagnostics/run")
		defer span.End()

		report := diagnostics.Run(ctx)
		writeJSON(w, http.StatusOK, report)
	}
}
