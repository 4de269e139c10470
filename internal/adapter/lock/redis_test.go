package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

func newTestRedisLocker(t *testing.T, timeout time.Duration) (*RedisLocker, redismock.ClientMock) {
	db, mockRedis := redismock.NewClientMock()
	l := NewRedisLocker(db, 5*time.Second, timeout, zaptest.NewLogger(t))
	l.token = func() string { return "token-1" }
	return l, mockRedis
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	l, mockRedis := newTestRedisLocker(t, time.Second)

	mockRedis.ExpectSetNX("lock:listing:7", "token-1", 5*time.Second).SetVal(true)
	mockRedis.ExpectEval(releaseScript, []string{"lock:listing:7"}, "token-1").SetVal(int64(1))

	release, err := l.Lock(context.Background(), 7)
	require.NoError(t, err)
	release()

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisLocker_RetriesUntilFree(t *testing.T) {
	l, mockRedis := newTestRedisLocker(t, time.Second)

	mockRedis.ExpectSetNX("lock:listing:7", "token-1", 5*time.Second).SetVal(false)
	mockRedis.ExpectSetNX("lock:listing:7", "token-1", 5*time.Second).SetVal(true)

	release, err := l.Lock(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, release)

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestRedisLocker_HeldIsBusy(t *testing.T) {
	l, mockRedis := newTestRedisLocker(t, 30*time.Millisecond)
	mockRedis.MatchExpectationsInOrder(false)
	for i := 0; i < 50; i++ {
		mockRedis.ExpectSetNX("lock:listing:7", "token-1", 5*time.Second).SetVal(false)
	}

	_, err := l.Lock(context.Background(), 7)

	assert.ErrorIs(t, err, domain.ErrBusy)
}

func TestRedisLocker_RedisErrorIsNotBusy(t *testing.T) {
	l, mockRedis := newTestRedisLocker(t, time.Second)
	mockRedis.ExpectSetNX("lock:listing:7", "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), 7)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrBusy)
	assert.Contains(t, err.Error(), "connection refused")
}
