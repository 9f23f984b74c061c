package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock acquired through a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker provides mutual exclusion on a key across processes.
type Locker interface {
	// Lock blocks until the lock on key is held or ctx is done. The lock
	// expires after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
