package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"salespulse/internal/infrastructure"
)

// Metrics records request count, duration and in-flight gauge per request,
// labeled by method, matched route pattern and status code.
func Metrics(m *infrastructure.HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.ActiveRequests.Inc()
			defer m.ActiveRequests.Dec()

			start := time.Now()
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			labels := []string{r.Method, routePattern(r), strconv.Itoa(ww.Status())}
			m.RequestsTotal.WithLabelValues(labels...).Inc()
			m.RequestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
		})
	}
}

// routePattern returns the chi route pattern that matched, falling back to
// the raw path when the request never reached the router. The pattern keeps
// label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
