package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID tags ctx so timings logged under it can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time logs the duration of an operation at debug level, or at warn when
// the operation failed. Usage: defer obs.Time(ctx, logger, "op")(&err).
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()
	if logger == nil {
		logger = slog.Default()
	}

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		attrs := []any{
			slog.String("op", name),
			slog.Int64("dur_ms", dur.Milliseconds()),
		}
		if reqID != "" {
			attrs = append(attrs, slog.String("req_id", reqID))
		}

		if errp != nil && *errp != nil {
			logger.WarnContext(ctx, "operation failed", append(attrs, slog.Any("err", *errp))...)
			return
		}
		logger.DebugContext(ctx, "operation done", attrs...)
	}
}
