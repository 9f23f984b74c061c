package domain

import (
	"errors"
	"fmt"
)

// ErrUsage marks fatal misuse of the API. It is never retried.
var ErrUsage = errors.New("usage error")

// ErrNotFound marks a lookup that the caller may recover from.
var ErrNotFound = errors.New("not found")

// Usage errors.
var (
	ErrInvalidEventName = fmt.Errorf("%w: invalid event name", ErrUsage)
	ErrNoEventNames     = fmt.Errorf("%w: no event names given", ErrUsage)
	ErrInvalidKey       = fmt.Errorf("%w: invalid state key", ErrUsage)
	ErrNotCallable      = fmt.Errorf("%w: not callable", ErrUsage)
	ErrNoComponents     = fmt.Errorf("%w: nothing to register", ErrUsage)
	ErrReservedName     = fmt.Errorf("%w: reserved name", ErrUsage)
	ErrEventExists      = fmt.Errorf("%w: name is already defined as an event", ErrUsage)
	ErrExtraArgs        = fmt.Errorf("%w: extra positional arguments could not be bound", ErrUsage)
	ErrMissingArg       = fmt.Errorf("%w: missing required argument", ErrUsage)
	ErrInvalidReceiver  = fmt.Errorf("%w: engine argument is not an engine", ErrUsage)
	ErrNotMapping       = fmt.Errorf("%w: expected a mapping", ErrUsage)
	ErrReadOnly         = fmt.Errorf("%w: computed slot has no setter", ErrUsage)
)

// Not-found errors.
var (
	ErrNotState  = fmt.Errorf("%w: intermediate path segment is not a state", ErrNotFound)
	ErrWriteOnly = fmt.Errorf("%w: computed slot has no getter", ErrNotFound)

	// ErrSnapshotNotFound is returned by snapshot stores for unknown ids.
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
)

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsNotFound reports whether err is a recoverable not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
