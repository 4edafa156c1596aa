package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// UnmatchedRoute labels requests no pattern matched (404 and 405).
const UnmatchedRoute = "unmatched"

type routeKey struct{}

// route is filled in by RouteRecorder once the mux has picked a pattern.
type route struct {
	pattern string
}

// RouteRecorder wraps the ServeMux so the matched pattern is visible to
// ObservabilityMiddleware, which runs outside the mux and only sees an empty
// r.Pattern.
func RouteRecorder(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if rt, ok := r.Context().Value(routeKey{}).(*route); ok {
			rt.pattern = r.Pattern
		}
	})
}

// ObservabilityMiddleware traces each request and records request metrics
// labelled by the matched route pattern, never the raw path.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rt := &route{}
			ctx := context.WithValue(r.Context(), routeKey{}, rt)

			ctx, span := observability.StartSpan(ctx, "HTTP "+r.Method)
			defer span.End()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rw, r.WithContext(ctx))

			pattern := rt.pattern
			if pattern == "" {
				pattern = UnmatchedRoute
			}
			span.SetName(pattern)
			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", pattern),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.status_code", rw.statusCode),
			)
			observability.RecordRequestMetric(ctx, metrics, r.Method, pattern, rw.statusCode, time.Since(start))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
