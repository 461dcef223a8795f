package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"
)

// MockPredictor is a test implementation of the Predictor interface. It
// returns canned queries keyed by item name.
type MockPredictor struct {
	queries map[string][]model.PredictedQuery
	errs    map[string]error
	delay   time.Duration
	calls   []string
	mu      sync.Mutex
}

// NewMockPredictor creates a mock predictor with no canned data. Items
// without an entry predict as empty.
func NewMockPredictor() *MockPredictor {
	return &MockPredictor{
		queries: make(map[string][]model.PredictedQuery),
		errs:    make(map[string]error),
	}
}

// WithQueries registers canned queries for an item name.
func (m *MockPredictor) WithQueries(name string, queries ...model.PredictedQuery) *MockPredictor {
	m.queries[name] = queries
	return m
}

// WithError makes prediction fail for an item name.
func (m *MockPredictor) WithError(name string, err error) *MockPredictor {
	m.errs[name] = err
	return m
}

// WithDelay adds latency to every prediction call.
func (m *MockPredictor) WithDelay(d time.Duration) *MockPredictor {
	m.delay = d
	return m
}

// Predict returns the canned queries for the item.
func (m *MockPredictor) Predict(ctx context.Context, item model.StockItem) ([]model.PredictedQuery, error) {
	m.mu.Lock()
	m.calls = append(m.calls, item.Name)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errs[item.Name]; ok {
		return nil, err
	}
	return m.queries[item.Name], nil
}

// Calls returns the item names predicted so far.
func (m *MockPredictor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
