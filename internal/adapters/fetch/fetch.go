// Package fetch downloads the published sheet exports over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetries    = 2
	defaultRetryDelay = 2 * time.Second
	maxBodyBytes      = 10 << 20
)

// Client fetches CSV feed bodies with bounded retries.
type Client struct {
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
}

// NewClient creates a fetch client. A nil httpClient gets a default with a timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
}

// FetchCSV downloads one feed URL and returns the response body as text.
// PRE: url is non-empty; ctx is valid
// POST: Returns the body on HTTP 200; retries transport errors and 5xx responses
func (c *Client) FetchCSV(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.Warn("csv_fetch_retry", "attempt", attempt, "error", lastErr.Error())
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", fmt.Errorf("failed to fetch csv: %w", lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("csv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", resp.StatusCode >= 500, fmt.Errorf("csv endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", true, fmt.Errorf("read csv body: %w", err)
	}
	return string(body), false, nil
}
