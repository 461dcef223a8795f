// Package engine implements the core reconciliation engine for comparing
// warehouse stock against the partner catalogue.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfsync/shelfsync/internal/match"
	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/service"
)

// ReconciliationEngine orchestrates prediction, partner lookup and matching
// for a set of stock items.
type ReconciliationEngine struct {
	predictor   Predictor
	searcher    Searcher
	progress    ProgressFunc
	workers     int
	threshold   float64
	callTimeout time.Duration
}

// Config holds configuration options for the reconciliation engine.
type Config struct {
	Workers     int
	Threshold   float64
	CallTimeout time.Duration
}

// DefaultConfig returns the default configuration. Worker count stays small
// to respect rate limits on both the model provider and the partner site.
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		Threshold:   match.DefaultThreshold,
		CallTimeout: 45 * time.Second,
	}
}

// New creates a new reconciliation engine with the given dependencies.
func New(predictor Predictor, searcher Searcher) *ReconciliationEngine {
	return NewWithConfig(predictor, searcher, DefaultConfig())
}

// NewWithConfig creates a new reconciliation engine with custom configuration.
func NewWithConfig(predictor Predictor, searcher Searcher, config Config) *ReconciliationEngine {
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	if config.Threshold <= 0 {
		config.Threshold = match.DefaultThreshold
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultConfig().CallTimeout
	}

	return &ReconciliationEngine{
		predictor:   predictor,
		searcher:    searcher,
		workers:     config.Workers,
		threshold:   config.Threshold,
		callTimeout: config.CallTimeout,
	}
}

// SetProgress registers a per-item completion callback.
func (e *ReconciliationEngine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// Reconcile produces one comparison row per input item, in input order.
// Items are processed with bounded parallelism; a failure on one item is
// contained to that item's row. On cancellation the rows already completed
// are returned together with the context error.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, items []model.StockItem) ([]model.ReconciliationRow, error) {
	slog.Info("Starting reconciliation", "item_count", len(items), "workers", e.workers)

	if len(items) == 0 {
		return []model.ReconciliationRow{}, nil
	}

	results := make([]*model.ReconciliationRow, len(items))
	var done atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(e.workers)

	for i := range items {
		if ctx.Err() != nil {
			break
		}

		idx := i
		item := items[i]
		g.Go(func() error {
			row, err := e.reconcileItem(ctx, item)
			if err != nil {
				// In-flight work abandoned on cancellation; the
				// completed rows are still returned below.
				return nil
			}

			results[idx] = &row

			if e.progress != nil {
				e.progress(int(done.Add(1)), len(items))
			}
			return nil
		})
	}

	_ = g.Wait()

	// Re-assemble in input order, dropping slots abandoned by cancellation
	rows := make([]model.ReconciliationRow, 0, len(items))
	for _, row := range results {
		if row != nil {
			rows = append(rows, *row)
		}
	}

	if err := ctx.Err(); err != nil {
		slog.Warn("Reconciliation aborted",
			"completed_rows", len(rows),
			"item_count", len(items))
		return rows, err
	}

	slog.Info("Reconciliation complete", "row_count", len(rows))
	return rows, nil
}

// reconcileItem runs the per-item algorithm: predict, search candidates in
// descending confidence order, select the best listing, flag the
// discrepancy. Every outcome yields a row; only cancellation returns an
// error.
func (e *ReconciliationEngine) reconcileItem(ctx context.Context, item model.StockItem) (model.ReconciliationRow, error) {
	queries, err := e.predict(ctx, item)
	if err != nil {
		return model.ReconciliationRow{}, err
	}

	if len(queries) == 0 {
		slog.Debug("No predictions for item", "item_id", item.ID, "name", item.Name)
		return model.ReconciliationRow{Item: item, Flag: model.FlagUnpredicted}, nil
	}

	// Highest-confidence candidates first
	sort.SliceStable(queries, func(i, j int) bool {
		return queries[i].Confidence > queries[j].Confidence
	})

	listings, err := e.search(ctx, item, queries)
	if err != nil {
		return model.ReconciliationRow{}, err
	}

	if len(listings) == 0 {
		return model.ReconciliationRow{Item: item, Flag: model.FlagUnmatched}, nil
	}

	best, score := match.SelectBest(item.Name, listings, e.threshold)
	if best == nil {
		slog.Debug("No listing cleared the match threshold",
			"item_id", item.ID,
			"listing_count", len(listings))
		return model.ReconciliationRow{Item: item, Flag: model.FlagUnmatched}, nil
	}

	slog.Debug("Matched partner listing",
		"item_id", item.ID,
		"title", best.Title,
		"score", score)

	return model.ReconciliationRow{
		Item:    item,
		Listing: best,
		Flag:    model.CompareFlag(item, best),
	}, nil
}

// predict calls the predictor under the per-call timeout. Prediction
// failures degrade to no candidates.
func (e *ReconciliationEngine) predict(ctx context.Context, item model.StockItem) ([]model.PredictedQuery, error) {
	pctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	queries, err := e.predictor.Predict(pctx, item)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Prediction failed for item",
			"item_id", item.ID,
			"error", err)
		return nil, nil
	}
	return queries, nil
}

// search tries each predicted query until one yields listings. Search
// failures, including per-call timeouts, degrade to an empty result for
// that query.
func (e *ReconciliationEngine) search(ctx context.Context, item model.StockItem, queries []model.PredictedQuery) ([]model.PartnerListing, error) {
	for _, query := range queries {
		sctx, cancel := context.WithTimeout(ctx, e.callTimeout)
		listings, err := e.searcher.Search(sctx, query)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Partner search failed for query",
				"item_id", item.ID,
				"terms", query.Terms,
				"error", err)
			continue
		}

		if len(listings) > 0 {
			return listings, nil
		}
	}
	return nil, nil
}

// Stats aggregates the outcome of a run for display.
func Stats(rows []model.ReconciliationRow, duration time.Duration) service.RunStats {
	stats := service.RunStats{
		TotalItems: len(rows),
		Duration:   duration,
	}
	for _, row := range rows {
		switch row.Flag {
		case model.FlagUnpredicted:
			stats.Unpredicted++
		case model.FlagUnmatched:
			stats.Unmatched++
		default:
			stats.Matched++
		}
	}
	return stats
}
