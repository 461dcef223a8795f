// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"
)

// StockFilter defines filtering options for warehouse stock queries.
type StockFilter struct {
	StoreID        string
	ProductGroupID string
	Names          []string
	Limit          int
}

// StockReader defines the contract for fetching the stock baseline.
type StockReader interface {
	SearchStock(ctx context.Context, filter StockFilter) ([]model.StockItem, error)
}

// PredictionCache defines the contract for the predicted-query cache.
type PredictionCache interface {
	Get(ctx context.Context, key string) ([]model.PredictedQuery, bool, error)
	Set(ctx context.Context, key string, queries []model.PredictedQuery) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// RunStats shows the results of a reconciliation run.
type RunStats struct {
	TotalItems  int
	Matched     int
	Unmatched   int
	Unpredicted int
	Duration    time.Duration
}
