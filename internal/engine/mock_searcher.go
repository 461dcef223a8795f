package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"
)

// MockSearcher is a test implementation of the Searcher interface. It
// returns canned listings keyed by the query's first term.
type MockSearcher struct {
	listings map[string][]model.PartnerListing
	errs     map[string]error
	delay    time.Duration
	calls    []string
	mu       sync.Mutex
}

// NewMockSearcher creates a mock searcher with no canned data. Unknown
// terms return no listings.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{
		listings: make(map[string][]model.PartnerListing),
		errs:     make(map[string]error),
	}
}

// WithListings registers canned listings for a search term.
func (m *MockSearcher) WithListings(term string, listings ...model.PartnerListing) *MockSearcher {
	m.listings[term] = listings
	return m
}

// WithError makes the search fail for a term.
func (m *MockSearcher) WithError(term string, err error) *MockSearcher {
	m.errs[term] = err
	return m
}

// WithDelay adds latency to every search call.
func (m *MockSearcher) WithDelay(d time.Duration) *MockSearcher {
	m.delay = d
	return m
}

// Search returns the canned listings for the query's first term.
func (m *MockSearcher) Search(ctx context.Context, query model.PredictedQuery) ([]model.PartnerListing, error) {
	term := ""
	if len(query.Terms) > 0 {
		term = query.Terms[0]
	}

	m.mu.Lock()
	m.calls = append(m.calls, term)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errs[term]; ok {
		return nil, err
	}
	return m.listings[term], nil
}

// Calls returns the terms searched so far.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
