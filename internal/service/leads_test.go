package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"go.uber.org/zap"
)

func TestRegisterInterest_Success(t *testing.T) {
	pros := &mockProfessionalStore{professional: &domain.Professional{ID: "pro-1", UserID: "uid-p"}}
	leads := &mockLeadStore{}
	svc := service.NewLeadService(pros, leads, observability.NewMetrics(), zap.NewNop())

	resp, err := svc.RegisterInterest(context.Background(), professionalSession(),
		domain.RegisterInterestRequest{EvaluationID: "eval-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.Message != "Interesse registrado com sucesso!" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
	if leads.lastInserted.EvaluationID != "eval-1" {
		t.Errorf("unexpected evaluation id: %q", leads.lastInserted.EvaluationID)
	}
	if leads.lastInserted.ProfessionalID != "pro-1" {
		t.Errorf("lead must reference the caller's professional row, got %q", leads.lastInserted.ProfessionalID)
	}
	if leads.lastInserted.Status != domain.LeadStatusInterested {
		t.Errorf("unexpected status: %q", leads.lastInserted.Status)
	}
	if pros.lastGetToken != "tok-p" {
		t.Errorf("professional lookup must run under the session token, got %q", pros.lastGetToken)
	}
}

func TestRegisterInterest_MissingEvaluationID(t *testing.T) {
	pros := &mockProfessionalStore{}
	leads := &mockLeadStore{}
	svc := service.NewLeadService(pros, leads, observability.NewMetrics(), zap.NewNop())

	_, err := svc.RegisterInterest(context.Background(), professionalSession(),
		domain.RegisterInterestRequest{})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if pros.getCalls+leads.insertCalls != 0 {
		t.Error("expected no remote calls on missing evaluation id")
	}
}

func TestRegisterInterest_InsertErrorSurfaced(t *testing.T) {
	pros := &mockProfessionalStore{professional: &domain.Professional{ID: "pro-1"}}
	leads := &mockLeadStore{insertErr: &domain.RemoteError{Status: 409, Code: "23505", Message: "duplicate key value"}}
	svc := service.NewLeadService(pros, leads, observability.NewMetrics(), zap.NewNop())

	_, err := svc.RegisterInterest(context.Background(), professionalSession(),
		domain.RegisterInterestRequest{EvaluationID: "eval-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Erro ao registrar interesse: duplicate key value" {
		t.Errorf("remote message must be surfaced directly, got %q", err.Error())
	}
}
