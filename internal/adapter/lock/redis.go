package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

var errHeld = errors.New("lock held")

// RedisLocker is a lease-based lock shared by every API instance. The TTL
// bounds how long a crashed holder can block a listing.
type RedisLocker struct {
	client  redis.Cmdable
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
	token   func() string
}

func NewRedisLocker(client redis.Cmdable, ttl, acquireTimeout time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		timeout: acquireTimeout,
		logger:  logger.Named("lock"),
		token:   func() string { return uuid.NewString() },
	}
}

func Key(listingID int64) string {
	return fmt.Sprintf("lock:listing:%d", listingID)
}

func (l *RedisLocker) Lock(ctx context.Context, listingID int64) (func(), error) {
	key := Key(listingID)
	token := l.token()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(err)
		}
		if !ok {
			return false, errHeld
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.timeout))
	if err != nil {
		if errors.Is(err, errHeld) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}

	return func() {
		// the caller's ctx may already be done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release listing lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
