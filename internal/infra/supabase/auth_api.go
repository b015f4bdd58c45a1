package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// AuthAPI implementation — GoTrue endpoints under /auth/v1
// ============================================================

// gotrueUser is the identity shape GoTrue returns.
type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// gotrueSession covers both response shapes: /signup answers a bare user
// when email confirmation is pending and a full session when auto-confirmed;
// the password grant always answers a full session.
type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         *gotrueUser `json:"user"`

	// set when the body is a bare user object
	gotrueUser
}

func (s *gotrueSession) identity() *domain.Identity {
	u := s.User
	if u == nil {
		u = &s.gotrueUser
	}
	if u.ID == "" {
		return nil
	}
	return &domain.Identity{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

// SignUp creates a new identity in GoTrue. metadata lands in user_metadata.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignUp")
	defer span.End()

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", payload, c.anonKey, nil)
	if err != nil {
		return nil, err
	}

	var resp gotrueSession
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}

	identity := resp.identity()
	if identity == nil {
		return nil, fmt.Errorf("signup returned no user")
	}

	c.logger.Info("supabase: identity created",
		zap.String("identity_id", identity.ID),
	)
	return identity, nil
}

// SignInWithPassword establishes a session via the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignInWithPassword")
	defer span.End()

	payload := map[string]any{
		"email":    email,
		"password": password,
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", payload, c.anonKey, nil)
	if err != nil {
		return nil, err
	}

	var resp gotrueSession
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("password grant returned no access token")
	}

	return &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

// GetIdentity resolves the identity behind an access token. A rejection
// means the session is not (or not yet) valid.
func (c *Client) GetIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetIdentity")
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, nil)
	if err != nil {
		return nil, err
	}

	var u gotrueUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if u.ID == "" {
		return nil, &domain.ErrUnauthorized{Message: "sessão inválida"}
	}
	return &domain.Identity{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}, nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SignOut")
	defer span.End()

	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken, nil)
	return err
}

// AdminDeleteIdentity removes an identity using the service role key.
// Only the provisioning compensating action calls this.
func (c *Client) AdminDeleteIdentity(ctx context.Context, identityID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.AdminDeleteIdentity")
	defer span.End()

	path := fmt.Sprintf("/auth/v1/admin/users/%s", identityID)
	_, err := c.do(ctx, http.MethodDelete, path, nil, c.serviceRoleKey, nil)
	if err != nil {
		c.logger.Error("supabase: admin identity delete failed",
			zap.String("identity_id", identityID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("supabase: identity deleted",
		zap.String("identity_id", identityID),
	)
	return nil
}
