package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultKeyPrefix = "permitak:lock:"
)

var (
	_ payment.Locker = (*RedisLocker)(nil)
	_ payment.Locker = (*MemoryLocker)(nil)
)

// RedisLocker implements payment.Locker with bsm/redislock. Locks expire
// after ttl so a crashed holder cannot block a bill forever.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
	retry  redislock.RetryStrategy
	logger *zap.Logger
}

// NewRedisLocker creates a locker on top of a redislock client.
// A zero ttl defaults to 30s.
func NewRedisLocker(client redislock.RedisClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: redislock.New(client),
		ttl:    ttl,
		prefix: defaultKeyPrefix,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 3),
		logger: logger.Named("locker"),
	}
}

// Acquire obtains the lock for key, retrying briefly before giving up
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	lock, err := l.client.Obtain(ctx, lockKey, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, payment.ErrVerificationInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", lockKey, err)
	}

	return func() {
		// The caller's context may already be cancelled by the time we release.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}

// MemoryLocker is a process-local payment.Locker for single-instance
// deployments without Redis, and for tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker creates an empty MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// Acquire takes key without waiting
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, payment.ErrVerificationInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
