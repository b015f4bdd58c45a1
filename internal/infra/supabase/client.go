// Package supabase provides a client for Supabase (GoTrue + PostgREST + Storage).
// It is the only component that talks to the managed backend; everything else
// goes through the port interfaces this client implements.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase REST surfaces.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	anonKey        string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, anonKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		anonKey:        anonKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(maxConcurrency),
		cfg:            cfg,
		logger:         logger,
	}
}

// bearerFor picks the Authorization credential: an explicit user token when
// given, the service role key otherwise. The anon key alone never appears
// here — unauthenticated probes ask for it explicitly via anonBearer.
func (c *Client) bearerFor(accessToken string) string {
	if accessToken != "" {
		return accessToken
	}
	return c.serviceRoleKey
}

// do executes a request against Supabase and returns the raw body.
// Non-2xx responses are decoded into *domain.RemoteError so callers can
// classify policy rejections and credential failures.
func (c *Client) do(ctx context.Context, method, path string, payload any, bearer string, headers map[string]string) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	url := c.baseURL + path

	var bodyReader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := parseRemoteError(resp.StatusCode, body)
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", remoteErr.Code),
			zap.String("remote_message", remoteErr.Message),
		)
		return nil, remoteErr
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// restGet runs an authenticated PostgREST read through the circuit breaker
// with retry. User-scoped reads carry the session token so row level
// security stays in charge; an empty token falls back to the service role.
// Writes never come through here: mutations must not be retried
// automatically.
func (c *Client) restGet(ctx context.Context, path, accessToken string) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var err error
			body, err = c.do(ctx, http.MethodGet, "/rest/v1/"+path, nil, c.bearerFor(accessToken), nil)
			if err != nil {
				// Retrying a structured remote rejection just repeats it.
				if _, ok := err.(*domain.RemoteError); ok {
					return resilience.Permanent(err)
				}
				return err
			}
			return nil
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "supabase"}
		}
		return nil, err
	}
	return body, nil
}

// restInsert posts rows to a PostgREST table. With representation=true the
// inserted rows come back in the response body.
func (c *Client) restInsert(ctx context.Context, table string, rows any, accessToken string, representation bool) ([]byte, error) {
	prefer := "return=minimal"
	if representation {
		prefer = "return=representation"
	}
	headers := map[string]string{"Prefer": prefer}

	res, err := c.cb.Execute(func() (any, error) {
		return c.do(ctx, http.MethodPost, "/rest/v1/"+table, rows, c.bearerFor(accessToken), headers)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "supabase"}
		}
		return nil, err
	}
	body, _ := res.([]byte)
	return body, nil
}

// parseRemoteError decodes a PostgREST/GoTrue error body. Both services
// answer JSON; GoTrue sometimes uses msg/error_description instead of message.
func parseRemoteError(status int, body []byte) *domain.RemoteError {
	var raw struct {
		Code             string `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
	}
	remoteErr := &domain.RemoteError{Status: status}
	if err := json.Unmarshal(body, &raw); err != nil {
		remoteErr.Message = string(body)
		return remoteErr
	}

	remoteErr.Code = raw.Code
	if remoteErr.Code == "" {
		remoteErr.Code = raw.ErrorCode
	}
	switch {
	case raw.Message != "":
		remoteErr.Message = raw.Message
	case raw.Msg != "":
		remoteErr.Message = raw.Msg
	case raw.ErrorDescription != "":
		remoteErr.Message = raw.ErrorDescription
	default:
		remoteErr.Message = fmt.Sprintf("status %d", status)
	}
	return remoteErr
}

func isEmptyResult(body []byte) bool {
	return len(body) == 0 || string(body) == "[]"
}
