package engine

import (
	"context"

	"github.com/shelfsync/shelfsync/internal/model"
)

// Predictor defines the contract for deriving candidate search queries for
// one stock item. A nil or empty result means the item is unpredicted; the
// implementation must not fail the run for a single bad item.
type Predictor interface {
	Predict(ctx context.Context, item model.StockItem) ([]model.PredictedQuery, error)
}

// Searcher defines the contract for looking up one predicted query on the
// partner catalogue. An empty result is a legitimate outcome.
type Searcher interface {
	Search(ctx context.Context, query model.PredictedQuery) ([]model.PartnerListing, error)
}

// ProgressFunc is invoked after each item completes. It may be called from
// multiple goroutines.
type ProgressFunc func(done, total int)
