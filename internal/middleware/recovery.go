package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Varun5711/shortlinks/internal/logger"
)

// Recovery answers 500 instead of dropping the connection when a handler panics.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
