package booking

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrLockHeld = errors.New("booking lock held by another request")

// Locker serializes reservations for one manicurist and date across
// processes. It is advisory; the database transaction stays authoritative.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		// the request context may already be done
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}

func lockKey(manicuristID uuid.UUID, date string) string {
	return "booking:lock:" + manicuristID.String() + ":" + date
}

// acquireLock retries a held lock until lockWait runs out. A lock that stays
// held, or a locker that fails, leaves the reservation to the transaction,
// which is what decides conflicts.
func (e *Engine) acquireLock(ctx context.Context, key string) (func(), error) {
	deadline := time.NewTimer(e.lockWait)
	defer deadline.Stop()
	retry := time.NewTicker(lockRetryInterval)
	defer retry.Stop()

	for {
		release, err := e.locker.Acquire(ctx, key, e.lockTTL)
		switch {
		case err == nil:
			return release, nil
		case !errors.Is(err, ErrLockHeld):
			e.logger.Warn("booking lock unavailable", zap.String("key", key), zap.Error(err))
			return func() {}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			e.logger.Warn("booking lock still held, continuing without it", zap.String("key", key))
			return func() {}, nil
		case <-retry.C:
		}
	}
}
