package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// EvaluationStore implementation — "evaluations" table (read-only)
// ============================================================

func (c *Client) ListEvaluationsByUser(ctx context.Context, userID, accessToken string) ([]domain.Evaluation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListEvaluationsByUser")
	defer span.End()

	path := fmt.Sprintf("evaluations?user_id=eq.%s&select=*&order=created_at.desc", url.QueryEscape(userID))
	body, err := c.restGet(ctx, path, accessToken)
	if err != nil {
		return nil, err
	}
	return decodeEvaluations(body)
}

// ListLatestEvaluations feeds the shared dashboard feed. The feed is
// role-independent and cached across users, so it reads as the service
// role rather than any one caller.
func (c *Client) ListLatestEvaluations(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLatestEvaluations")
	defer span.End()

	path := fmt.Sprintf("evaluations?select=*&order=created_at.desc&limit=%d", limit)
	body, err := c.restGet(ctx, path, "")
	if err != nil {
		return nil, err
	}
	return decodeEvaluations(body)
}

func decodeEvaluations(body []byte) ([]domain.Evaluation, error) {
	if isEmptyResult(body) {
		return []domain.Evaluation{}, nil
	}
	var rows []domain.Evaluation
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode evaluations: %w", err)
	}
	return rows, nil
}
