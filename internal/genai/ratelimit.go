package genai

import (
	"context"
	"fmt"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const rateLimitKey = "ratelimit:genai:%s:%d"

// RateLimiter is a fixed-window per-user counter kept in redis.
type RateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(rdb redis.Cmdable, perMinute int) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  perMinute,
		window: time.Minute,
		now:    time.Now,
	}
}

// Allow counts one generation call for userID and rejects it once the
// window's budget is spent.
func (r *RateLimiter) Allow(ctx context.Context, userID string) error {
	if r == nil || r.limit <= 0 {
		return nil
	}
	bucket := r.now().Unix() / int64(r.window/time.Second)
	key := fmt.Sprintf(rateLimitKey, userID, bucket)

	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return apperrors.NewExternalServiceError("redis", err)
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, key, r.window).Err(); err != nil {
			return apperrors.NewExternalServiceError("redis", err)
		}
	}
	if n > int64(r.limit) {
		return apperrors.NewRateLimitedError(fmt.Sprintf("at most %d generation calls per minute", r.limit))
	}
	return nil
}
