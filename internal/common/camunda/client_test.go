package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("process definition not found")))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg      string
		wantKind apperrors.Kind
		wantCode apperrors.ErrorCode
	}{
		{"expected to find process definition but not found", apperrors.KindNotFound, apperrors.ErrCodeResourceNotFound},
		{"instance already exists", apperrors.KindConflictOrRace, apperrors.ErrCodeVersionConflict},
		{"permission denied", apperrors.KindUnauthenticated, apperrors.ErrCodeForbidden},
		{"connection refused", apperrors.KindUpstreamFailure, apperrors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(errors.New(tt.msg), "publish", 0)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
			assert.True(t, apperrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}}}

	t.Run("transient then success", func(t *testing.T) {
		calls := 0
		out, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			calls++
			if calls < 2 {
				return nil, errors.New("unavailable")
			}
			return "ok", nil
		}, "op")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("not found")
		}, "op")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("timeout")
		}, "op")
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUpstreamFailure))
	})
}
