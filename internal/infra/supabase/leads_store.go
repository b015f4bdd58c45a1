package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// LeadStore implementation — "leads" table
// ============================================================

// leadEmbedding pulls the evaluation slice (and its owning client) in one
// round-trip via PostgREST resource embedding, matching what the
// professional dashboard renders.
const leadEmbedding = "*,evaluation:evaluations(area_focus,sub_area,user:users(name,email))"

func (c *Client) ListLeadsByProfessional(ctx context.Context, professionalID, accessToken string) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeadsByProfessional")
	defer span.End()

	path := fmt.Sprintf("leads?professional_id=eq.%s&select=%s&order=created_at.desc",
		url.QueryEscape(professionalID), url.QueryEscape(leadEmbedding))
	body, err := c.restGet(ctx, path, accessToken)
	if err != nil {
		return nil, err
	}
	if isEmptyResult(body) {
		return []domain.Lead{}, nil
	}

	var rows []domain.Lead
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return rows, nil
}

func (c *Client) InsertLead(ctx context.Context, lead *domain.Lead, accessToken string) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertLead")
	defer span.End()

	rows := []map[string]any{{
		"evaluation_id":   lead.EvaluationID,
		"professional_id": lead.ProfessionalID,
		"status":          lead.Status,
	}}
	body, err := c.restInsert(ctx, "leads", rows, accessToken, true)
	if err != nil {
		return nil, err
	}

	var inserted []domain.Lead
	if err := json.Unmarshal(body, &inserted); err != nil {
		return nil, fmt.Errorf("decode inserted lead: %w", err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("lead insert returned no row")
	}
	return &inserted[0], nil
}
