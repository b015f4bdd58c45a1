package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"
)

// ============================================================
// StorageAPI implementation — bucket metadata under /storage/v1
// ============================================================

// GetBucket fetches bucket metadata. A missing bucket comes back as
// *domain.ErrNotFound so the diagnostics battery can downgrade it to a
// warning instead of a failure.
func (c *Client) GetBucket(ctx context.Context, name string) (map[string]any, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBucket")
	defer span.End()

	path := fmt.Sprintf("/storage/v1/bucket/%s", name)
	body, err := c.do(ctx, http.MethodGet, path, nil, c.serviceRoleKey, nil)
	if err != nil {
		if remoteErr, ok := err.(*domain.RemoteError); ok &&
			(remoteErr.Status == http.StatusNotFound || remoteErr.Status == http.StatusBadRequest) {
			return nil, &domain.ErrNotFound{Resource: "bucket", ID: name}
		}
		return nil, err
	}

	var meta map[string]any
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode bucket metadata: %w", err)
	}
	return meta, nil
}
