package warm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier asks a downstream HTTP cache to pre-fill the externally facing
// report endpoints after their backing reports have been warmed.
type Notifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotifier creates a notifier targeting the given base URL.
func NewNotifier(baseURL string) *Notifier {
	return &Notifier{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Notify issues one GET for a warmed report so the edge cache stores the
// response. Failures are reported but never abort the warm run.
func (n *Notifier) Notify(ctx context.Context, kind, scopeKey string, windowDays int, start, end time.Time) error {
	q := url.Values{}
	q.Set("scope", scopeKey)
	q.Set("window", fmt.Sprintf("%d", windowDays))
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.Format(time.DateOnly))
	endpoint := fmt.Sprintf("%s/reports/%s?%s", n.baseURL, kind, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build prewarm request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prewarm %s: %w", kind, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("prewarm %s: unexpected status %d", kind, resp.StatusCode)
	}

	log.Debug().Str("kind", kind).Str("scope", scopeKey).Int("window", windowDays).Msg("Prewarmed report endpoint")
	return nil
}
