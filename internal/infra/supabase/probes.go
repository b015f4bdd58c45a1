package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// Prober implementation — raw probes for the diagnostics battery
// ============================================================

// ProbeTable issues a minimal read against a table with the service role.
// A missing table surfaces as a PostgREST error (42P01); success means the
// table answered, even if empty.
func (c *Client) ProbeTable(ctx context.Context, table string) error {
	ctx, span := tracer.Start(ctx, "Supabase.ProbeTable")
	defer span.End()

	path := fmt.Sprintf("%s?select=*&limit=1", url.PathEscape(table))
	_, err := c.do(ctx, http.MethodGet, "/rest/v1/"+path, nil, c.serviceRoleKey, nil)
	return err
}

// ProbeUnauthenticated reads with the anon key as bearer — the shape of a
// request from a logged-out browser. The outcome characterizes whether the
// access policies are permissive or restrictive.
func (c *Client) ProbeUnauthenticated(ctx context.Context, table string) error {
	ctx, span := tracer.Start(ctx, "Supabase.ProbeUnauthenticated")
	defer span.End()

	path := fmt.Sprintf("%s?select=*&limit=1", url.PathEscape(table))
	_, err := c.do(ctx, http.MethodGet, "/rest/v1/"+path, nil, c.anonKey, nil)
	return err
}

// ProbeInsertUser inserts a synthetic row with the anon key as bearer, the
// shape of a write from a logged-out browser. With active insert policies
// the backend rejects it, which is the outcome the battery wants to see.
func (c *Client) ProbeInsertUser(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "Supabase.ProbeInsertUser")
	defer span.End()

	rows := []map[string]any{{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"type":  string(user.Type),
	}}
	headers := map[string]string{"Prefer": "return=minimal"}
	_, err := c.do(ctx, http.MethodPost, "/rest/v1/users", rows, c.anonKey, headers)
	return err
}

// ProbeListUsers reads back a handful of profile rows under the anon
// bearer. RLS-filtered emptiness and real emptiness look the same here;
// the battery reports both as a warning.
func (c *Client) ProbeListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ProbeListUsers")
	defer span.End()

	path := fmt.Sprintf("/rest/v1/users?select=*&limit=%d", limit)
	body, err := c.do(ctx, http.MethodGet, path, nil, c.anonKey, nil)
	if err != nil {
		return nil, err
	}
	if isEmptyResult(body) {
		return []domain.User{}, nil
	}

	var rows []domain.User
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return rows, nil
}
