package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	apierrors "github.com/narvanalabs/timeline/internal/server/errors"
	"github.com/narvanalabs/timeline/pkg/logger"
)

// Recovery returns a middleware that recovers from panics and logs the error.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					requestID := middleware.GetReqID(r.Context())

					log.Error("panic recovered",
						"error", rec,
						"stack_trace", string(debug.Stack()),
						"request_id", requestID,
						"method", r.Method,
						"path", r.URL.Path,
					)

					err := apierrors.NewInternalError("An unexpected error occurred").WithRequestID(requestID)
					apierrors.WriteError(w, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
