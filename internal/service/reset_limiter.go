package service

import (
	"context"
	"fmt"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/security"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AttemptLimiter caps how often an action may run for a key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisAttemptLimiter is a fixed window counter shared by all instances.
type RedisAttemptLimiter struct {
	Redis  *redis.Client
	Prefix string
	Max    int
	Window time.Duration
}

func (l *RedisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", l.Prefix, strings.ToLower(key))

	count, err := l.Redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.Redis.Expire(ctx, redisKey, l.Window)
	}
	return count <= int64(l.Max), nil
}

// MemoryAttemptLimiter keeps the same budget in process.
type MemoryAttemptLimiter struct {
	limiter *security.KeyedLimiter
}

func NewMemoryAttemptLimiter(max int, window time.Duration) *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{limiter: security.NewKeyedLimiter(max, window)}
}

func (l *MemoryAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.limiter.Prune()
	return l.limiter.Allow(strings.ToLower(key)), nil
}

// NewAttemptLimiter uses Redis when a client is available.
func NewAttemptLimiter(rdb *redis.Client, prefix string, max int, window time.Duration) AttemptLimiter {
	if rdb != nil {
		return &fallbackLimiter{
			primary:  &RedisAttemptLimiter{Redis: rdb, Prefix: prefix, Max: max, Window: window},
			fallback: NewMemoryAttemptLimiter(max, window),
		}
	}
	return NewMemoryAttemptLimiter(max, window)
}

// fallbackLimiter degrades to the in-process limiter while Redis is failing.
type fallbackLimiter struct {
	primary  AttemptLimiter
	fallback AttemptLimiter
}

func (l *fallbackLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.primary.Allow(ctx, key)
	if err != nil {
		logger.Log.Warn("Redis limiter unavailable, using memory limiter", zap.Error(err))
		return l.fallback.Allow(ctx, key)
	}
	return ok, nil
}
