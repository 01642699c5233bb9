package infra

import (
	"context"
	"errors"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Locker serializes a multi-step mutation on a shared key across process
// instances. The DB row lock already serializes writers within one
// transaction; the distributed lock keeps whole operations (read → compute →
// write → audit) from interleaving when several API instances share the
// database.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

const (
	lockTTL        = 30 * time.Second
	lockRetryEvery = 50 * time.Millisecond
	lockRetryLimit = 100 // ~5s worst case before giving up
)

type redisLocker struct{ client *redislock.Client }

// NewRedisLocker wraps a go-redis client with bsm/redislock.
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{client: redislock.New(rdb)}
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	lock, err := l.client.Obtain(ctx, "lock:"+key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(
			redislock.LinearBackoff(lockRetryEvery), lockRetryLimit),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return apierror.Concurrency("could not obtain lock for %s", key)
	}
	if err != nil {
		return apierror.Transient("lock service unavailable", err)
	}
	defer func() {
		// Release must not be cut short by a cancelled request context.
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	return fn()
}
