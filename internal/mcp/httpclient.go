package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
)

// HTTPClient implements DataSource by calling the liftlog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the history lives on a liftlog server (for example over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func exercisePath(name, view string) string {
	return "/api/v1/exercises/" + url.PathEscape(name) + "/" + view
}

func (c *HTTPClient) Routines(ctx context.Context) ([]catalog.Routine, error) {
	var routines []catalog.Routine
	if err := c.get(ctx, "/api/v1/routines", &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (c *HTTPClient) ExerciseNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "/api/v1/exercises", &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *HTTPClient) Dates(ctx context.Context) ([]string, error) {
	var dates []string
	if err := c.get(ctx, "/api/v1/history/dates", &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

func (c *HTTPClient) SessionsForDate(ctx context.Context, date string) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.get(ctx, "/api/v1/history/dates/"+url.PathEscape(date), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) PreviousWeight(ctx context.Context, exercise string) (models.Weight, bool, error) {
	var resp struct {
		Weight models.Weight `json:"weight"`
		Found  bool          `json:"found"`
	}
	if err := c.get(ctx, exercisePath(exercise, "previous"), &resp); err != nil {
		return "", false, err
	}
	return resp.Weight, resp.Found, nil
}

func (c *HTTPClient) ProgressSeries(ctx context.Context, exercise string) ([]history.ProgressPoint, error) {
	var resp struct {
		Series []history.ProgressPoint `json:"series"`
	}
	if err := c.get(ctx, exercisePath(exercise, "progress"), &resp); err != nil {
		return nil, err
	}
	if resp.Series == nil {
		resp.Series = []history.ProgressPoint{}
	}
	return resp.Series, nil
}

func (c *HTTPClient) ProgressOverview(ctx context.Context) ([]history.ExerciseProgress, error) {
	var overview []history.ExerciseProgress
	if err := c.get(ctx, "/api/v1/progress", &overview); err != nil {
		return nil, err
	}
	return overview, nil
}
