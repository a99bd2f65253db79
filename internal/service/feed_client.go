package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 2 * time.Second
)

// FeedClient downloads listing feeds published as JSON
type FeedClient struct {
	client  *http.Client
	parser  *Parser
	backoff time.Duration
}

// NewFeedClient creates a new feed client
func NewFeedClient(parser *Parser) *FeedClient {
	return &FeedClient{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		parser:  parser,
		backoff: initialBackoff,
	}
}

// FetchListings retrieves and parses the feed at url
func (c *FeedClient) FetchListings(ctx context.Context, url string) (*ParseResult, error) {
	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings feed: %w", err)
	}

	result, err := c.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings feed: %w", err)
	}
	return result, nil
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *FeedClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
