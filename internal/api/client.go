// Package api fetches leaderboard pages from the remote scoring endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/lbview/internal/extract"
	"github.com/verte-zerg/lbview/internal/model"
)

// DefaultEndpoint is the public leaderboard endpoint.
const DefaultEndpoint = "https://api.quizrr.in/api/hiring/leaderboard"

const (
	defaultTimeout  = 30 * time.Second
	maxErrorSnippet = 512
)

// PageFetcher retrieves one page of entries.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, limit int) ([]model.Entry, error)
}

// FetchError reports a failed page request.
type FetchError struct {
	Page       int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d: status %d: %v", e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client talks to the leaderboard endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTransport swaps the transport of the default HTTP client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a client for the given endpoint.
func New(endpoint string, opts ...Option) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchPage requests one page. The response is never served from a cache.
func (c *Client) FetchPage(ctx context.Context, page, limit int) ([]model.Entry, error) {
	if page < 1 {
		return nil, &FetchError{Page: page, Err: fmt.Errorf("page must be >= 1")}
	}
	if limit < 1 {
		return nil, &FetchError{Page: page, Err: fmt.Errorf("limit must be >= 1")}
	}
	reqURL, err := c.pageURL(page, limit)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}

	resp, err := c.request(ctx, reqURL)
	if err != nil {
		return nil, &FetchError{Page: page, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = resp.Status
		}
		return nil, &FetchError{Page: page, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	records, err := decodeResults(resp.Body)
	if err != nil {
		return nil, &FetchError{Page: page, StatusCode: resp.StatusCode, Err: err}
	}
	return extract.Entries(records), nil
}

func (c *Client) pageURL(page, limit int) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) request(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// decodeResults requires a JSON object body. A missing or malformed data.results is an empty page.
func decodeResults(r io.Reader) ([]any, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("failed to decode response: body is not an object")
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(body["data"], &data); err != nil || data == nil {
		return []any{}, nil
	}
	var records []any
	if err := json.Unmarshal(data["results"], &records); err != nil {
		return []any{}, nil
	}
	return records, nil
}
