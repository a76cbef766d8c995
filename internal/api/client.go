package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"karaoke/internal/ledger"
)

// ErrDaemonUnavailable reports that no daemon answered at the base URL.
var ErrDaemonUnavailable = errors.New("daemon unavailable")

// Client talks to a running daemon's HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent on /api/v1 requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient targets base, which may be a full URL or a bind address such as
// ":8000".
func NewClient(base string, opts ...ClientOption) (*Client, error) {
	parsed, err := parseBase(base)
	if err != nil {
		return nil, err
	}
	c := &Client{base: parsed, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved daemon address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Submit posts a new job.
func (c *Client) Submit(ctx context.Context, req CreateJobRequest) (ledger.Record, error) {
	var rec ledger.Record
	err := c.do(ctx, http.MethodPost, "/api/v1/jobs", nil, req, &rec)
	return rec, err
}

// Get fetches one job.
func (c *Client) Get(ctx context.Context, id string) (ledger.Record, error) {
	var rec ledger.Record
	err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(strings.TrimSpace(id)), nil, nil, &rec)
	return rec, err
}

// List fetches jobs, optionally filtered by status.
func (c *Client) List(ctx context.Context, statuses ...string) ([]ledger.Record, error) {
	query := url.Values{}
	for _, status := range statuses {
		if status = strings.TrimSpace(status); status != "" {
			query.Add("status", status)
		}
	}
	var records []ledger.Record
	err := c.do(ctx, http.MethodGet, "/api/v1/jobs", query, nil, &records)
	return records, err
}

// Status fetches daemon diagnostics.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var status DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, nil, &status)
	return status, err
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	StatusCode int
	Body       ErrorResponse
}

func (e *APIError) Error() string {
	msg := e.Body.Error
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Body.Detail != "" {
		return fmt.Sprintf("daemon returned %d: %s: %s", e.StatusCode, msg, e.Body.Detail)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, msg)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return fmt.Errorf("%w at %s: %v", ErrDaemonUnavailable, c.base, err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, &apiErr.Body)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBase(base string) (*url.URL, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errors.New("daemon address is required")
	}
	if !strings.Contains(base, "://") {
		host, port, err := net.SplitHostPort(base)
		if err != nil {
			return nil, fmt.Errorf("daemon address %q: %w", base, err)
		}
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "127.0.0.1"
		}
		base = "http://" + net.JoinHostPort(host, port)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("daemon address %q: %w", base, err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("daemon address %q has no host", base)
	}
	return parsed, nil
}
