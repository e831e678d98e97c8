package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds the connection settings for the GitHub API.
type Config struct {
	BaseURL string
	Token   string

	// RequestDelay throttles consecutive event-page requests to stay under
	// the unauthenticated rate limit.
	RequestDelay time.Duration
}

// Client is the interface for reading activity events from GitHub.
type Client interface {
	// ListRepoEvents fetches one page of public events for a repository.
	ListRepoEvents(ctx context.Context, repo string, page int) ([]EventDTO, error)
	// ListOrgEvents fetches one page of public events for an organization.
	ListOrgEvents(ctx context.Context, org string, page int) ([]EventDTO, error)
}

// NewClient creates a GitHub REST client from the provided configuration.
func NewClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = time.Second
	}
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type restClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time
}

const perPage = 100

func (c *restClient) ListRepoEvents(ctx context.Context, repo string, page int) ([]EventDTO, error) {
	return c.listEvents(ctx, fmt.Sprintf("/repos/%s/events", repo), page)
}

func (c *restClient) ListOrgEvents(ctx context.Context, org string, page int) ([]EventDTO, error) {
	return c.listEvents(ctx, fmt.Sprintf("/orgs/%s/events", url.PathEscape(org)), page)
}

func (c *restClient) listEvents(ctx context.Context, path string, page int) ([]EventDTO, error) {
	c.throttle()

	endpoint := fmt.Sprintf("%s%s?per_page=%d&page=%d", c.cfg.BaseURL, path, perPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch events: unexpected status %d: %s", resp.StatusCode, body)
	}

	var events []EventDTO
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events response: %w", err)
	}

	log.Debug().Str("path", path).Int("page", page).Int("count", len(events)).Msg("Fetched event page")
	return events, nil
}

func (c *restClient) throttle() {
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling GitHub request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *restClient) authenticateRequest(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
	}
}
