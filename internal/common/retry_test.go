package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/service"
)

func fastOpts() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return nil
		}, fastOpts())

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries until success", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, fastOpts())

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return &RetryableError{Err: errors.New("transient"), Retryable: true}
		}, fastOpts())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-retryable errors stop immediately", func(t *testing.T) {
		attempts := 0
		wrapped := errors.New("bad request")
		err := WithRetry(context.Background(), func() error {
			attempts++
			return &RetryableError{Err: wrapped, Retryable: false}
		}, fastOpts())

		require.Error(t, err)
		assert.ErrorIs(t, err, wrapped)
		assert.Equal(t, 1, attempts)
	})

	t.Run("context cancellation stops the backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		opts := fastOpts()
		opts.InitialDelay = time.Second
		opts.MaxDelay = time.Second

		attempts := 0
		done := make(chan error, 1)
		go func() {
			done <- WithRetry(ctx, func() error {
				attempts++
				cancel()
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}, opts)
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 1, attempts)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("retry did not observe cancellation")
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "throttled upstream", err: ErrUpstreamThrottled, want: true},
		{name: "wrapped throttle", err: errors.Join(errors.New("call"), ErrUpstreamThrottled), want: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
		{name: "non-retryable wrapper", err: &RetryableError{Err: errors.New("x"), Retryable: false}, want: false},
		{name: "plain error", err: errors.New("x"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
