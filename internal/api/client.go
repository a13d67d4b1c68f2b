// Package api is the authenticated HTTP client for the finance-tracker
// backend. Every request carries the session token; 401/403 tears the
// session down exactly once and surfaces ErrSessionExpired so callers can
// redirect without double-reporting.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/session"
)

// AuthHeader is the fixed header carrying the session token.
const AuthHeader = "X-Auth-Token"

type Client struct {
	baseURL string
	httpc   *http.Client
	store   session.Store
}

// New creates a client for the backend at baseURL (e.g.
// "http://localhost:8080/api"). httpc may be nil, in which case
// http.DefaultClient is used; no request timeout is imposed beyond the
// caller's context.
func New(baseURL string, store session.Store, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		store:   store,
	}
}

// Store exposes the session store the client was built with.
func (c *Client) Store() session.Store { return c.store }

// do executes one request and classifies the response. The returned bytes
// are the raw 2xx body; header is the 2xx response header set.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) ([]byte, http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if authed {
		sess, err := c.store.Current(ctx)
		if err != nil {
			// No complete session on file behaves like an expired one.
			return nil, nil, ErrSessionExpired
		}
		req.Header.Set(AuthHeader, sess.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Tear the session down once, regardless of which renderer made
		// the call; callers see the sentinel and redirect without
		// re-reporting.
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			slog.WarnContext(ctx, "Failed to clear session after auth failure", "error", clearErr)
		}
		slog.InfoContext(ctx, "Session expired", "status", resp.StatusCode, "path", path)
		return nil, nil, ErrSessionExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	return data, resp.Header, nil
}

// doJSON runs an authenticated request and decodes the 2xx body into out
// (skipped when out is nil or the body is empty).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, _, err := c.do(ctx, method, path, body, true)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
