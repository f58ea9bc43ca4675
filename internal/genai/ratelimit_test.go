package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rl := NewRateLimiter(rdb, 2)
	fixed := time.Date(2026, 5, 1, 10, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, rl.Allow(ctx, "user-1"))
	require.NoError(t, rl.Allow(ctx, "user-1"))

	err := rl.Allow(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRateLimited))

	require.NoError(t, rl.Allow(ctx, "user-2"), "limit is per user")

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.True(t, mr.TTL(keys[0]) > 0, "window key expires")

	rl.now = func() time.Time { return fixed.Add(time.Minute) }
	assert.NoError(t, rl.Allow(ctx, "user-1"), "next window starts fresh")
}

func TestRateLimiter_Disabled(t *testing.T) {
	var nilLimiter *RateLimiter
	assert.NoError(t, nilLimiter.Allow(context.Background(), "user-1"))
	assert.NoError(t, NewRateLimiter(nil, 0).Allow(context.Background(), "user-1"))
}

func TestRateLimiter_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, 5)
	rl.now = func() time.Time { return time.Unix(120, 0) }

	mock.ExpectIncr("ratelimit:genai:user-1:2").SetErr(errors.New("connection refused"))

	err := rl.Allow(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeExternalService))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_SetsExpiryOnFirstHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, 5)
	rl.now = func() time.Time { return time.Unix(120, 0) }

	mock.ExpectIncr("ratelimit:genai:user-1:2").SetVal(1)
	mock.ExpectExpire("ratelimit:genai:user-1:2", time.Minute).SetVal(true)

	require.NoError(t, rl.Allow(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
