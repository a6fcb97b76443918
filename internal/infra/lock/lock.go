package lock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when the doctor lock could not be taken within the
// configured wait.
var ErrTimeout = errors.New("booking lock: timed out waiting for doctor")

// Locker serializes booking attempts per doctor. The returned release func
// must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, doctorID uint) (release func(), err error)
}

// waitErr reports why a wait ended: the caller's own cancellation or deadline
// wins over ErrTimeout.
func waitErr(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrTimeout
}
