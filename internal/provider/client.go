package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fabriclens/fabriclens/internal/apperr"
	"github.com/fabriclens/fabriclens/internal/graph"
)

// Client talks to the HTTP data provider (GET /graph, GET /stats,
// POST /refresh). Any non-2xx response is a failure; no partial payload is
// ever returned.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the provider at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Graph fetches the full raw payload.
func (c *Client) Graph(ctx context.Context) (*graph.Payload, error) {
	var p graph.Payload
	if err := c.getJSON(ctx, "/graph", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Stats fetches the summary counts.
func (c *Client) Stats(ctx context.Context) (*graph.Stats, error) {
	var s graph.Stats
	if err := c.getJSON(ctx, "/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Refresh triggers a provider-side data rebuild.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("refresh: %w: %v", apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("refresh: %w: status %d", apperr.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w: %v", path, apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: %w: status %d", path, apperr.ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("get %s: decode: %w", path, err)
	}
	return nil
}
