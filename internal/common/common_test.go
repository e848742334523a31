package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "", want: slog.LevelInfo},
		{name: "WARN", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("visible", "rows", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"rows":3`)
}

func TestLoggerFrom(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, LoggerFrom(ctx))
	assert.Same(t, slog.Default(), LoggerFrom(context.Background()))
}

func TestUserError(t *testing.T) {
	err := NewUserError("dataset not found", ErrNotFound)

	assert.Equal(t, "dataset not found: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return fmt.Errorf("write tab: %w", ErrRateLimit)
		}, opts)

		require.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		permanent := errors.New("bad request")
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: permanent, Retryable: false}
		}, opts)

		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not retry unclassified errors", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrNotFound
		}, opts)

		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries deadline exceeded", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls == 1 {
				return context.DeadlineExceeded
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(errors.New("x")))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(fmt.Errorf("write: %w", context.Canceled)))
	assert.True(t, IsRetryable(fmt.Errorf("write: %w", context.DeadlineExceeded)))
}
