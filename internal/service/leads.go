package service

import (
	"context"
	"strings"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var leadTracer = otel.Tracer("service/leads")

// LeadService records a professional's interest in a published evaluation.
type LeadService struct {
	professionals port.ProfessionalStore
	leads         port.LeadStore
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewLeadService creates the lead registration service.
func NewLeadService(professionals port.ProfessionalStore, leads port.LeadStore, metrics *observability.Metrics, logger *zap.Logger) *LeadService {
	return &LeadService{
		professionals: professionals,
		leads:         leads,
		metrics:       metrics,
		logger:        logger,
	}
}

// RegisterInterest inserts a lead linking the caller's professional row to
// the given evaluation. The write runs under the caller's own token so row
// level security stays in charge of who may create leads.
func (s *LeadService) RegisterInterest(ctx context.Context, sess *domain.SessionContext, req domain.RegisterInterestRequest) (*domain.RegisterInterestResponse, error) {
	ctx, span := leadTracer.Start(ctx, "Leads.RegisterInterest")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("register_interest", time.Since(start))
	}()

	if strings.TrimSpace(req.EvaluationID) == "" {
		return nil, &domain.ErrValidation{Field: "evaluation_id", Message: "Avaliação não informada"}
	}
	span.SetAttributes(attribute.String("evaluation.id", req.EvaluationID))

	professional, err := s.professionals.GetProfessionalByUserID(ctx, sess.User.ID, sess.AccessToken)
	if err != nil {
		s.metrics.IncrExternalError("rest")
		return nil, err
	}

	lead, err := s.leads.InsertLead(ctx, &domain.Lead{
		EvaluationID:   req.EvaluationID,
		ProfessionalID: professional.ID,
		Status:         domain.LeadStatusInterested,
	}, sess.AccessToken)
	if err != nil {
		s.logger.Error("lead insert failed",
			zap.String("evaluation_id", req.EvaluationID),
			zap.String("professional_id", professional.ID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("rest")
		return nil, &domain.ErrValidation{Field: "lead", Message: "Erro ao registrar interesse: " + domain.RemoteMessage(err)}
	}

	s.logger.Info("interest registered",
		zap.String("lead_id", lead.ID),
		zap.String("evaluation_id", req.EvaluationID),
	)

	return &domain.RegisterInterestResponse{
		Lead:    lead,
		Message: "Interesse registrado com sucesso!",
	}, nil
}
