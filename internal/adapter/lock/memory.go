package lock

import (
	"context"
	"sync"
	"time"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

// MemoryLocker serializes admission per listing inside a single process.
type MemoryLocker struct {
	mu      sync.Mutex
	slots   map[int64]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker(acquireTimeout time.Duration) *MemoryLocker {
	return &MemoryLocker{
		slots:   make(map[int64]*slot),
		timeout: acquireTimeout,
	}
}

func (l *MemoryLocker) Lock(ctx context.Context, listingID int64) (func(), error) {
	s := l.acquireSlot(listingID)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(listingID)
		return nil, domain.ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(listingID)
		})
	}, nil
}

func (l *MemoryLocker) acquireSlot(listingID int64) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[listingID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[listingID] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) releaseSlot(listingID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.slots[listingID]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, listingID)
	}
}
