package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/lodging_booking/internal/adapter/lock"
	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

func TestMemoryLocker_SerializesSameListing(t *testing.T) {
	locker := lock.NewMemoryLocker(time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(ctx, 1)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestMemoryLocker_DifferentListingsDoNotBlock(t *testing.T) {
	locker := lock.NewMemoryLocker(50 * time.Millisecond)
	ctx := context.Background()

	release1, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Lock(ctx, 2)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_TimeoutIsBusy(t *testing.T) {
	locker := lock.NewMemoryLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrBusy)

	release()
	release() // second call is a no-op

	again, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	again()
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	locker := lock.NewMemoryLocker(0)

	release, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Lock(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrBusy)
}
