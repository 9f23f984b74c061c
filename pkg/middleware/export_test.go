package middleware

import "time"

// Elapsed exposes the clock-injected Seconds condition to tests.
var Elapsed = func(d time.Duration, now func() time.Time) Condition { return elapsed(d, now) }
