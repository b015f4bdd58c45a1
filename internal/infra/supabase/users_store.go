package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// UserStore implementation — "users" table via PostgREST
// ============================================================

// GetUserByID reads a profile row under the caller's own token, so RLS
// decides whose row is visible.
func (c *Client) GetUserByID(ctx context.Context, id, accessToken string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()

	path := fmt.Sprintf("users?id=eq.%s&limit=1", url.QueryEscape(id))
	body, err := c.restGet(ctx, path, accessToken)
	if err != nil {
		return nil, err
	}
	if isEmptyResult(body) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}

	var rows []domain.User
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return &rows[0], nil
}

// InsertUser persists the profile row keyed by the identity id. The token,
// when set, makes the insert run as the freshly signed-in user so RLS sees
// an authenticated request — exactly what the provisioning flow needs.
func (c *Client) InsertUser(ctx context.Context, user *domain.User, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertUser")
	defer span.End()

	rows := []map[string]any{{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"type":  string(user.Type),
	}}
	_, err := c.restInsert(ctx, "users", rows, accessToken, false)
	return err
}
