package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client posts message envelopes to a running daemon. The CLI health and
// prefs commands use it, as can any script that prefers HTTP over the
// in-process router.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the daemon at addr (host:port or full URL).
func NewClient(addr string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Call sends one action envelope and decodes the response. A response with
// success=false is returned as an error carrying the daemon's message.
func (c *Client) Call(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	payload := map[string]any{"action": action}
	for k, v := range params {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is the daemon running? start it with 'spendlink serve': %w", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid daemon response: %w", err)
	}
	if success, _ := out["success"].(bool); !success {
		errMsg, _ := out["error"].(string)
		if errMsg == "" {
			errMsg = "unknown daemon error"
		}
		return out, fmt.Errorf("%s failed: %s", action, errMsg)
	}
	return out, nil
}

// Ping checks the daemon's liveness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return nil
}
