package handler

import (
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboards — /v1/dashboard (protected)
// ============================================================

func clientDashboardHandler(dashboards *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/client")
		defer span.End()

		sess := SessionFromContext(ctx)
		dashboard, err := dashboards.ClientDashboard(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboard)
	}
}

func professionalDashboardHandler(dashboards *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/professional")
		defer span.End()

		sess := SessionFromContext(ctx)
		dashboard, err := dashboards.ProfessionalDashboard(ctx, sess)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboard)
	}
}
