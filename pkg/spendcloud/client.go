// Package spendcloud is a minimal authenticated client for the spend.cloud
// JSON:API.
package spendcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// AuthHeader carries the selected bearer token on every API request.
const AuthHeader = "X-Authorization-Token"

const defaultTimeout = 30 * time.Second

// TokenProvider supplies the bearer token to attach to a request for the
// given tenant and environment.
type TokenProvider interface {
	Token(tenant string, dev bool) (string, error)
}

// APIError is a non-2xx response from the API, carrying the upstream JSON:API
// error title/detail when the body was parseable.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("spend.cloud API returned %d", e.StatusCode)
	if e.Title != "" {
		msg += ": " + e.Title
	}
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	return msg
}

// Client issues authenticated GETs against a tenant's spend.cloud API. There
// is no retry or backoff at this layer; bounded retries belong to the
// user-facing flows.
type Client struct {
	http   *http.Client
	tokens TokenProvider
	base   func(tenant string, dev bool) string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides how tenant/environment map to a base URL. Tests use
// this to point the client at an httptest server.
func WithBaseURL(base func(tenant string, dev bool) string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the per-request timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient builds a client with an in-memory caching transport so repeated
// lookups of the same resource ride on conditional requests.
func NewClient(tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   defaultTimeout,
		},
		tokens: tokens,
		base:   BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL maps a tenant and environment to the API origin, e.g.
// https://acme.spend.cloud or https://acme.dev.spend.cloud.
func BaseURL(tenant string, dev bool) string {
	if dev {
		return fmt.Sprintf("https://%s.dev.spend.cloud", tenant)
	}
	return fmt.Sprintf("https://%s.spend.cloud", tenant)
}

// Get fetches path (e.g. "/api/cards/7") for the tenant and returns the raw
// response body. Non-2xx responses become an *APIError.
func (c *Client) Get(ctx context.Context, tenant string, dev bool, path string) ([]byte, error) {
	tok, err := c.tokens.Token(tenant, dev)
	if err != nil {
		return nil, err
	}

	u := c.base(tenant, dev) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(AuthHeader, tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", u, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// parseAPIError pulls the first JSON:API error object out of the body, if any.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Title = payload.Errors[0].Title
		apiErr.Detail = payload.Errors[0].Detail
	}
	return apiErr
}
