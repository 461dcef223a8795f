// Package partner provides the external partner catalogue client. The
// partner site guarantees no schema; results are best-effort scraped from
// search result HTML, with an optional LLM-assisted extraction fallback for
// markup the structural parser does not recognize.
package partner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

// Extractor pulls listings out of search result HTML when the structural
// parse finds nothing. Implemented by the LLM-backed extractor.
type Extractor interface {
	Extract(ctx context.Context, term, html string) ([]model.PartnerListing, error)
}

// Config holds partner catalogue configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: partner base URL is required", common.ErrMissingConfig)
	}
	return nil
}

// Client searches the partner catalogue with predicted query terms.
type Client struct {
	httpClient *http.Client
	extractor  Extractor
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a new partner catalogue client. The extractor may be nil
// to disable the LLM fallback.
func NewClient(cfg Config, extractor Extractor) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		extractor: extractor,
		logger:    slog.Default().With("component", "partner"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Search tries the query's candidate terms in order until one yields at
// least one listing or the terms are exhausted. Network and scraping errors
// are soft failures: the term is logged and skipped. An empty result is a
// legitimate outcome, not an error.
func (c *Client) Search(ctx context.Context, query model.PredictedQuery) ([]model.PartnerListing, error) {
	for _, term := range query.Terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(term) == "" {
			continue
		}

		page, err := c.fetchSearchPage(ctx, term)
		if err != nil {
			c.logger.Warn("Partner search request failed",
				"term", term,
				"error", err)
			continue
		}

		listings := parseListings(page, term)
		if len(listings) == 0 && c.extractor != nil {
			listings, err = c.extractor.Extract(ctx, term, page)
			if err != nil {
				c.logger.Warn("LLM listing extraction failed",
					"term", term,
					"error", err)
				continue
			}
		}

		if len(listings) > 0 {
			c.logger.Debug("Partner listings found",
				"term", term,
				"listing_count", len(listings))
			return listings, nil
		}
	}

	return nil, nil
}

// fetchSearchPage executes one search request and returns the raw HTML.
func (c *Client) fetchSearchPage(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("category_id", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("partner search error (status %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}
