// Package service — DashboardService loads the per-role view data.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// latestEvaluationsLimit matches what the professional dashboard renders.
const latestEvaluationsLimit = 10

const evaluationsFeedKey = "evaluations:latest"

// DashboardService runs the data loaders behind both dashboards.
type DashboardService struct {
	professionals port.ProfessionalStore
	evaluations   port.EvaluationStore
	leads         port.LeadStore
	feedCache     port.Cache[[]domain.Evaluation]
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewDashboardService creates the dashboard loader service.
func NewDashboardService(professionals port.ProfessionalStore, evaluations port.EvaluationStore, leads port.LeadStore, feedCache port.Cache[[]domain.Evaluation], metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		professionals: professionals,
		evaluations:   evaluations,
		leads:         leads,
		feedCache:     feedCache,
		metrics:       metrics,
		logger:        logger,
	}
}

// ClientDashboard loads the client view: the user's evaluations, newest first.
func (d *DashboardService) ClientDashboard(ctx context.Context, sess *domain.SessionContext) (*domain.ClientDashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "Dashboard.Client")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", sess.User.ID))

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("dashboard_client", time.Since(start))
	}()

	evaluations, err := d.evaluations.ListEvaluationsByUser(ctx, sess.User.ID, sess.AccessToken)
	if err != nil {
		d.metrics.IncrExternalError("rest")
		return nil, fmt.Errorf("evaluations fetch: %w", err)
	}

	return &domain.ClientDashboard{
		User:        sess.User,
		Evaluations: evaluations,
	}, nil
}

// ProfessionalDashboard loads the professional view: extension row, then
// leads and the shared latest-evaluations feed concurrently.
func (d *DashboardService) ProfessionalDashboard(ctx context.Context, sess *domain.SessionContext) (*domain.ProfessionalDashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "Dashboard.Professional")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", sess.User.ID))

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("dashboard_professional", time.Since(start))
	}()

	professional, err := d.professionals.GetProfessionalByUserID(ctx, sess.User.ID, sess.AccessToken)
	if err != nil {
		d.metrics.IncrExternalError("rest")
		return nil, fmt.Errorf("professional fetch: %w", err)
	}

	var (
		leads []domain.Lead
		feed  []domain.Evaluation
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l, err := d.leads.ListLeadsByProfessional(gCtx, professional.ID, sess.AccessToken)
		if err != nil {
			d.logger.Error("failed to fetch leads",
				zap.String("professional_id", professional.ID),
				zap.Error(err),
			)
			d.metrics.IncrExternalError("rest")
			return fmt.Errorf("leads fetch: %w", err)
		}
		leads = l
		return nil
	})

	g.Go(func() error {
		// The feed is role-independent public data; a short TTL keeps it
		// off the hot path without staleness anyone would notice.
		if cached, ok := d.feedCache.Get(evaluationsFeedKey); ok {
			feed = cached
			d.metrics.IncrCacheHit("evaluations")
			return nil
		}
		d.metrics.IncrCacheMiss("evaluations")

		e, err := d.evaluations.ListLatestEvaluations(gCtx, latestEvaluationsLimit)
		if err != nil {
			d.logger.Error("failed to fetch evaluations feed", zap.Error(err))
			d.metrics.IncrExternalError("rest")
			return fmt.Errorf("evaluations fetch: %w", err)
		}
		feed = e
		d.feedCache.Set(evaluationsFeedKey, e)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.ProfessionalDashboard{
		User:         sess.User,
		Professional: professional,
		Leads:        leads,
		Evaluations:  feed,
		Summary:      summarizeLeads(leads),
	}, nil
}

// leadStatusRank orders the lifecycle so the furthest status wins when the
// same evaluation carries more than one lead.
var leadStatusRank = map[string]int{
	domain.LeadStatusProspect:   0,
	domain.LeadStatusInterested: 1,
	domain.LeadStatusConverted:  2,
}

// summarizeLeads counts the pipeline, de-duplicating by evaluation id so a
// double-registered interest does not inflate the numbers.
func summarizeLeads(leads []domain.Lead) domain.LeadSummary {
	seen := make(map[string]string, len(leads))
	for _, l := range leads {
		key := l.EvaluationID
		if key == "" {
			key = l.ID
		}
		if prev, ok := seen[key]; !ok || leadStatusRank[l.Status] > leadStatusRank[prev] {
			seen[key] = l.Status
		}
	}

	summary := domain.LeadSummary{TotalLeads: len(seen)}
	for _, status := range seen {
		switch status {
		case domain.LeadStatusProspect:
			summary.Prospects++
		case domain.LeadStatusInterested:
			summary.Interested++
		case domain.LeadStatusConverted:
			summary.Converted++
		}
	}
	return summary
}
