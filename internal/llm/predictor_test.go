package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/service"
)

// stubClient is a canned Client implementation for predictor tests.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
	mu        sync.Mutex
}

func (s *stubClient) Complete(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("no canned response")
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testPredictor(client Client, cache service.PredictionCache) *Predictor {
	opts := service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	return newPredictor(client, cache, slog.Default(), opts, 0)
}

func TestPredictor_Predict(t *testing.T) {
	item := model.StockItem{ID: "1", Name: "iPhone 14 128GB", SerialNumber: "SN1"}

	t.Run("parses queries and stamps the item ID", func(t *testing.T) {
		client := &stubClient{responses: []string{
			`{"queries": [{"terms": ["iphone 14 128gb"], "confidence": 0.9}]}`,
		}}
		p := testPredictor(client, NewMemoryCache(time.Minute))
		defer func() { require.NoError(t, p.Close()) }()

		queries, err := p.Predict(context.Background(), item)

		require.NoError(t, err)
		require.Len(t, queries, 1)
		assert.Equal(t, "1", queries[0].SourceItemID)
		assert.Equal(t, []string{"iphone 14 128gb"}, queries[0].Terms)
		assert.InDelta(t, 0.9, queries[0].Confidence, 1e-9)
	})

	t.Run("caches predictions by item hash", func(t *testing.T) {
		client := &stubClient{responses: []string{
			`{"queries": [{"terms": ["iphone 14"], "confidence": 0.8}]}`,
		}}
		p := testPredictor(client, NewMemoryCache(time.Minute))
		defer func() { require.NoError(t, p.Close()) }()

		first, err := p.Predict(context.Background(), item)
		require.NoError(t, err)

		second, err := p.Predict(context.Background(), item)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, client.callCount(), "second call must hit the cache")
	})

	t.Run("client failure degrades to no candidates", func(t *testing.T) {
		client := &stubClient{errs: []error{
			errors.New("boom"), errors.New("boom"), errors.New("boom"),
		}}
		p := testPredictor(client, NewMemoryCache(time.Minute))
		defer func() { require.NoError(t, p.Close()) }()

		queries, err := p.Predict(context.Background(), item)

		require.NoError(t, err)
		assert.Empty(t, queries)
	})

	t.Run("unparseable response degrades to no candidates", func(t *testing.T) {
		client := &stubClient{responses: []string{"```\n```"}}
		p := testPredictor(client, NewMemoryCache(time.Minute))
		defer func() { require.NoError(t, p.Close()) }()

		queries, err := p.Predict(context.Background(), item)

		require.NoError(t, err)
		assert.Empty(t, queries)
	})

	t.Run("canceled context is surfaced", func(t *testing.T) {
		client := &stubClient{errs: []error{errors.New("boom")}}
		p := testPredictor(client, NewMemoryCache(time.Minute))
		defer func() { require.NoError(t, p.Close()) }()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Predict(ctx, item)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryCache(t *testing.T) {
	t.Run("set then get", func(t *testing.T) {
		cache := NewMemoryCache(time.Minute)
		defer func() { require.NoError(t, cache.Close()) }()

		queries := []model.PredictedQuery{{Terms: []string{"bolt m6"}, Confidence: 0.9}}
		require.NoError(t, cache.Set(context.Background(), "k", queries))

		got, found, err := cache.Get(context.Background(), "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, queries, got)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewMemoryCache(time.Minute)
		defer func() { require.NoError(t, cache.Close()) }()

		_, found, err := cache.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		cache := NewMemoryCache(10 * time.Millisecond)
		defer func() { require.NoError(t, cache.Close()) }()

		require.NoError(t, cache.Set(context.Background(), "k", []model.PredictedQuery{{Terms: []string{"a"}}}))
		time.Sleep(20 * time.Millisecond)

		_, found, err := cache.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
