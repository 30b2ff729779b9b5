// Package api provides a client for the scoring backend's admin endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dqs-sentinel/src/contracts"
)

// DefaultBaseURL is where the scoring backend listens locally.
const DefaultBaseURL = "http://localhost:5000"

const defaultTimeout = 30 * time.Second

// Client talks to the backend's REST surface: health, live-log queries, the
// destructive clear, and API key registration. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	apiKey string
}

// NewClient creates a backend client. Empty baseURL falls back to
// DefaultBaseURL; a non-positive timeout gets the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// SetAPIKey registers the key with the backend's scoring engine and attaches
// it to subsequent requests from this client.
func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	payload := map[string]string{"api_key": key}
	if err := c.do(ctx, http.MethodPost, "/live/set-api-key", payload, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
	return nil
}

// ClearLive wipes the backend's persisted live log.
func (c *Client) ClearLive(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/live/clear", nil, nil)
}

// LiveStats fetches the aggregate stats over the backend's full log.
func (c *Client) LiveStats(ctx context.Context) (contracts.StatsSnapshot, error) {
	var out struct {
		Success bool                    `json:"success"`
		Stats   contracts.StatsSnapshot `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/live/stats", nil, &out); err != nil {
		return contracts.StatsSnapshot{}, err
	}
	return out.Stats, nil
}

// LiveLogs fetches persisted entries. start and end are ISO8601 strings;
// either may be empty for an open bound.
func (c *Client) LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	path := "/live/logs"
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out contracts.LogsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return contracts.LogsResponse{}, err
	}
	return out, nil
}

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// do runs one request. body and out may be nil; non-2xx responses become
// typed errors carrying the status and a body excerpt.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := c.key(); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	excerpt := strings.TrimSpace(string(body))

	var base error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		base = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		base = ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		base = ErrBadRequest
	case resp.StatusCode >= 500:
		base = ErrBackendDown
	}

	if base != nil {
		return fmt.Errorf("%w: status %d: %s", base, resp.StatusCode, excerpt)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, excerpt)
}
