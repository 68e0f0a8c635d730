// Package jobclient triggers the API's internal job endpoints from outside
// the server process, for deployments that schedule work externally.
package jobclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"firedues/internal/models"
)

// Client calls /internal/jobs with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d (%s: %s)", e.Op, e.StatusCode, e.Code, e.Message)
}

// RunRollover creates missing assessments for year, or the server's current
// year when year is nil.
func (c *Client) RunRollover(ctx context.Context, year *int) (*models.JobRun, error) {
	return c.runJob(ctx, "rollover", "/internal/jobs/rollover", year)
}

// RunPending applies payments parked for year, or the server's current year
// when year is nil.
func (c *Client) RunPending(ctx context.Context, year *int) (*models.JobRun, error) {
	return c.runJob(ctx, "pending sweep", "/internal/jobs/pending", year)
}

// ListRuns returns the most recent recorded runs, optionally of one kind.
func (c *Client) ListRuns(ctx context.Context, kind string) ([]models.JobRun, error) {
	url := c.baseURL + "/internal/jobs/runs"
	if kind != "" {
		url += "?kind=" + kind
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var result struct {
		Data []models.JobRun `json:"data"`
	}
	if err := c.do(req, "listing job runs", &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) runJob(ctx context.Context, op, path string, year *int) (*models.JobRun, error) {
	body, err := json.Marshal(struct {
		Year *int `json:"year,omitempty"`
	}{Year: year})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		JobRun *models.JobRun `json:"job_run"`
	}
	if err := c.do(req, op, &result); err != nil {
		return nil, err
	}
	if result.JobRun == nil {
		return nil, fmt.Errorf("%s: response has no job_run", op)
	}
	return result.JobRun, nil
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			statusErr.Code = body.Error.Code
			statusErr.Message = body.Error.Message
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}
