package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker. It only serializes bookings handled by the
// same process; multi-instance deployments use Redis.
type Local struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
	wait  time.Duration
}

func NewLocal(wait time.Duration) *Local {
	return &Local{
		slots: make(map[uint]chan struct{}),
		wait:  wait,
	}
}

func (l *Local) slot(doctorID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[doctorID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[doctorID] = ch
	}
	return ch
}

func (l *Local) Acquire(ctx context.Context, doctorID uint) (func(), error) {
	ch := l.slot(doctorID)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case ch <- struct{}{}:
	case <-waitCtx.Done():
		return nil, waitErr(ctx)
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
