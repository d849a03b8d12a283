package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func loggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request", "path", r.URL.Path, "method", r.Method, "took", time.Since(start))
		})
	}
}
