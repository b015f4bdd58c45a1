package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// ProfessionalStore implementation — "professionals" table
// ============================================================

func (c *Client) GetProfessionalByUserID(ctx context.Context, userID, accessToken string) (*domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfessionalByUserID")
	defer span.End()

	path := fmt.Sprintf("professionals?user_id=eq.%s&limit=1", url.QueryEscape(userID))
	body, err := c.restGet(ctx, path, accessToken)
	if err != nil {
		return nil, err
	}
	if isEmptyResult(body) {
		return nil, &domain.ErrNotFound{Resource: "professional", ID: userID}
	}

	var rows []domain.Professional
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode professionals: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "professional", ID: userID}
	}
	return &rows[0], nil
}

func (c *Client) InsertProfessional(ctx context.Context, p *domain.Professional, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertProfessional")
	defer span.End()

	rows := []map[string]any{{
		"user_id":     p.UserID,
		"specialty":   p.Specialty,
		"city":        p.City,
		"clinic_name": p.ClinicName,
		"focus":       p.Focus,
	}}
	_, err := c.restInsert(ctx, "professionals", rows, accessToken, false)
	return err
}
