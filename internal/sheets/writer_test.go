package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		retryable bool
		rateLimit bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, retryable: true, rateLimit: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, retryable: true},
		{name: "wrapped server error", err: fmt.Errorf("write batch: %w", &googleapi.Error{Code: 500}), retryable: true},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}},
		{name: "transport error", err: errors.New("connection reset by peer"), retryable: true},
		{name: "canceled", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyAPIError(tt.err)
			require.ErrorIs(t, classified, tt.err)
			assert.Equal(t, tt.retryable, common.IsRetryable(classified))
			assert.Equal(t, tt.rateLimit, errors.Is(classified, common.ErrRateLimit))
		})
	}

	assert.NoError(t, classifyAPIError(nil))
}

func TestClassifyAPIError_WithRetryStopsOnPermanentFailure(t *testing.T) {
	opts := common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := common.WithRetry(context.Background(), func() error {
		calls++
		return classifyAPIError(&googleapi.Error{Code: http.StatusNotFound})
	}, opts)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	err = common.WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return classifyAPIError(&googleapi.Error{Code: http.StatusBadGateway})
		}
		return nil
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
