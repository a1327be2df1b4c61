package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/pribylovaa/blog-service/internal/pkg/log"
	apierrors "github.com/pribylovaa/blog-service/internal/transport/http/errors"
)

// Recover превращает panic обработчика в 500 {"error":"internal error"}.
// http.ErrAbortHandler пробрасывается дальше: net/http обрывает соединение сам.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.From(r.Context()).Error("panic recovered",
					"path", r.URL.Path,
					"reason", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				apierrors.WriteError(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
