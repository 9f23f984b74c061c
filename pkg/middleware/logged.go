package middleware

import (
	"log/slog"
	"time"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
)

// Logged logs every call at debug level, and failures at error level.
// A nil logger uses the receiver engine's logger.
func Logged(logger *slog.Logger) engine.Middleware {
	return func(e *engine.Engine, next engine.Callback, kw domain.Kwargs) (any, error) {
		l := logger
		if l == nil {
			l = e.Logger()
		}
		start := time.Now()
		out, err := next(kw)
		if err != nil {
			l.Error("action failed", "err", err, "duration", time.Since(start))
			return out, err
		}
		l.Debug("action done", "duration", time.Since(start))
		return out, nil
	}
}
