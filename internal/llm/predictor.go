package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/service"
)

// Predictor implements the engine.Predictor interface using LLM APIs.
type Predictor struct {
	client      Client
	cache       service.PredictionCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewPredictor creates a new LLM-based parameter predictor. The cache may be
// nil, in which case an in-memory cache with the configured TTL is used.
func NewPredictor(cfg Config, cache service.PredictionCache, logger *slog.Logger) (*Predictor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if cache == nil {
		cache = NewMemoryCache(cfg.CacheTTL)
	}

	if logger == nil {
		logger = slog.Default().With("component", "predictor")
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return newPredictor(client, cache, logger, retryOpts, cfg.RateLimit), nil
}

func newPredictor(client Client, cache service.PredictionCache, logger *slog.Logger, retryOpts service.RetryOptions, rateLimit int) *Predictor {
	return &Predictor{
		client:      client,
		cache:       cache,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(rateLimit),
	}
}

// Predict produces candidate search queries for one stock item. Prediction
// failures degrade to an empty result so that one bad item never aborts the
// reconciliation of the others; only context cancellation is surfaced.
func (p *Predictor) Predict(ctx context.Context, item model.StockItem) ([]model.PredictedQuery, error) {
	key := item.Hash()
	if queries, found, err := p.cache.Get(ctx, key); err == nil && found {
		p.logger.Debug("cache hit for item", "item_id", item.ID, "name", item.Name)
		return p.withSource(item, queries), nil
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	var content string
	retryErr := common.WithRetry(ctx, func() error {
		var completeErr error
		content, completeErr = p.client.Complete(ctx, p.buildPrompt(item))
		if completeErr != nil {
			return &common.RetryableError{
				Err:       completeErr,
				Retryable: common.IsRetryable(completeErr),
			}
		}
		return nil
	}, p.retryOpts)

	if retryErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Treat the item as unpredicted and keep going
		p.logger.Warn("prediction failed, continuing without candidates",
			"item_id", item.ID,
			"name", item.Name,
			"error", retryErr)
		return nil, nil
	}

	queries, err := parsePredictions(content)
	if err != nil {
		if !errors.Is(err, common.ErrParseFailure) {
			p.logger.Error("unexpected prediction parse error", "item_id", item.ID, "error", err)
		} else {
			p.logger.Warn("unparseable prediction response",
				"item_id", item.ID,
				"response_length", len(content))
		}
		return nil, nil
	}

	if cacheErr := p.cache.Set(ctx, key, queries); cacheErr != nil {
		p.logger.Warn("failed to cache predictions", "item_id", item.ID, "error", cacheErr)
	}

	p.logger.Debug("predicted queries for item",
		"item_id", item.ID,
		"name", item.Name,
		"query_count", len(queries))

	return p.withSource(item, queries), nil
}

// withSource stamps the originating item ID onto cached or freshly parsed
// queries.
func (p *Predictor) withSource(item model.StockItem, queries []model.PredictedQuery) []model.PredictedQuery {
	stamped := make([]model.PredictedQuery, len(queries))
	for i, q := range queries {
		q.SourceItemID = item.ID
		stamped[i] = q
	}
	return stamped
}

// buildPrompt creates the prediction prompt for one stock item.
func (p *Predictor) buildPrompt(item model.StockItem) string {
	details := fmt.Sprintf("Product name: %s", item.Name)
	if item.SerialNumber != "" {
		details += fmt.Sprintf("\nSerial number: %s", item.SerialNumber)
	}

	return fmt.Sprintf(`Predict search queries for finding this warehouse product in an external partner catalogue.

The partner catalogue uses its own naming conventions, so produce normalized variants of the product name that a search engine would match: strip internal codes, expand common abbreviations, and order words the way a shop listing would.

%s

Respond with JSON in this exact shape, best query first, at most 3 queries:
{
  "queries": [
    {"terms": ["iphone 14 128gb purple", "apple iphone 14 128"], "confidence": 0.9}
  ]
}

Each query's terms are alternatives tried in order. Confidence is your estimate from 0.0 to 1.0 that the query finds the right product.`, details)
}

// Close releases predictor resources.
func (p *Predictor) Close() error {
	p.rateLimiter.Close()
	return p.cache.Close()
}
