// Package warehouse provides a client for the warehouse management service API.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/shelfsync/shelfsync/internal/common"
)

// maxRateLimitRetries bounds how many 429 responses one request will absorb.
const maxRateLimitRetries = 3

// Config holds warehouse API configuration.
type Config struct {
	APIURL      string
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%w: warehouse API URL is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: warehouse access token is required", common.ErrMissingConfig)
	}
	return nil
}

// Client implements the service.StockReader interface against the warehouse
// HTTP API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a new warehouse client. Credentials are caller-provided;
// the token is attached to every request via an oauth2 static token source.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.APIURL, "/") + "/",
		httpClient: httpClient,
		logger:     slog.Default().With("component", "warehouse"),
	}, nil
}

// doRequest performs one rate-limit-aware request against the warehouse API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, payload any) (json.RawMessage, error) {
	var jsonBody []byte
	if payload != nil {
		var err error
		jsonBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	reqURL := c.baseURL + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		// Fresh reader per attempt so rate-limit retries re-send the payload
		var body io.Reader
		if jsonBody != nil {
			body = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", common.ErrUpstreamUnavailable, readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= maxRateLimitRetries {
				return nil, fmt.Errorf("%w: warehouse rate limit after %d retries", common.ErrUpstreamThrottled, attempt)
			}

			delay := retryAfter(resp.Header)
			c.logger.Warn("Warehouse rate limit exceeded, waiting",
				"delay", delay,
				"attempt", attempt+1)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, endpoint)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: warehouse API error (status %d): %s",
				common.ErrUpstreamUnavailable, resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}
}

// retryAfter reads the warehouse rate-limit header, defaulting to 5s.
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("X-Lognex-Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 5 * time.Second
}

// entityHref builds a metadata reference to a warehouse entity.
func (c *Client) entityHref(entityType, id string) map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"href":      fmt.Sprintf("%sentity/%s/%s", c.baseURL, entityType, id),
			"type":      entityType,
			"mediaType": "application/json",
		},
	}
}

// idFromHref extracts the trailing entity ID from a metadata href.
func idFromHref(href string) string {
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		return href[idx+1:]
	}
	return href
}
