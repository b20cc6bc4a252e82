package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Recover converts a handler panic into an acknowledged failure response.
//
// The subscription host treats any non-2xx status as a signal to redeliver
// the batch. A crashed invocation that surfaced as a 500 would therefore be
// redelivered forever, so even an unexpected fault must be answered with a
// 200 and an ok:false body. The true failure is preserved in the log stream.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "panic recovered while handling delivery",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]any{
					"ok":    false,
					"error": "internal error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
