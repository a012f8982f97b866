// Package client is a typed HTTP client for the test-results API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lei/test-results/internal/models"
)

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %d: %s", e.StatusCode, e.Body)
}

// CreateResponse is the body of a successful ingest
type CreateResponse struct {
	Message   string `json:"message"`
	TestRunID string `json:"test_run_id"`
}

// Client talks to a single test-results deployment
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) testRunsURL() string {
	return c.baseURL + "/test-runs"
}

// ListTestRuns fetches stored records, applying filter server-side
func (c *Client) ListTestRuns(ctx context.Context, filter models.RunFilter) ([]models.TestRunRecord, error) {
	u := c.testRunsURL()

	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Environment != "" {
		q.Set("environment", filter.Environment)
	}
	if filter.TriggeredBy != "" {
		q.Set("triggered_by", filter.TriggeredBy)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var records []models.TestRunRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateTestRun submits a test run result
func (c *Client) CreateTestRun(ctx context.Context, in models.TestRunInput) (CreateResponse, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return CreateResponse{}, fmt.Errorf("failed to encode test run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.testRunsURL(), bytes.NewReader(payload))
	if err != nil {
		return CreateResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp CreateResponse
	if err := c.do(req, &resp); err != nil {
		return CreateResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
