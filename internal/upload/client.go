package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the server's answer to an import.
type Result struct {
	Received int `json:"received"`
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// Client sends a workout history export to a liftlog server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the liftlog server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// RejectedError is a 4xx answer. The request will not succeed on retry.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("import rejected (status %d): %s", e.Status, e.Body)
}

// SendHistory POSTs a workoutHistory export to the server's import endpoint.
// Retries up to 3 times with exponential backoff on transport errors and
// 5xx answers.
func (c *Client) SendHistory(ctx context.Context, data []byte) (Result, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		}

		res, err := c.post(ctx, data)
		if err == nil {
			return res, nil
		}
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return Result{}, err
		}
		lastErr = err
	}

	return Result{}, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/import", bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Result{}, &RejectedError{Status: resp.StatusCode, Body: string(body)}
	default:
		return Result{}, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return Result{}, fmt.Errorf("decoding import result: %w", err)
	}
	return res, nil
}
