package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/blog-service/internal/pkg/log"
)

// Logging кладёт в контекст логгер запроса (с request_id) и после ответа
// пишет одну запись "http"; 5xx пишутся с уровнем Error.
func Logging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ctx := log.Into(r.Context(), base)
			if rid := RequestIDFrom(ctx); rid != "" {
				ctx = log.With(ctx, "request_id", rid)
			}
			r = r.WithContext(ctx)

			rec := record(w)
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			log.From(ctx).LogAttrs(ctx, level, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("dur", time.Since(started)),
			)
		})
	}
}
