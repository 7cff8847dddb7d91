// internal/httpapi/middleware.go
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/common/metrics"
	"custom-pricing-service/internal/common/observability"

	"github.com/google/uuid"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

type statusRecorder struct {
	h  http.ResponseWriter
	st int
	n  int
}

func (w *statusRecorder) Header() http.Header { return w.h.Header() }
func (w *statusRecorder) WriteHeader(code int) {
	w.st = code
	w.h.WriteHeader(code)
}
func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.h.Write(b)
	w.n += n
	return n, err
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func WithLogging(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{h: w, st: 200}
		next.ServeHTTP(sr, r)
		lat := time.Since(start)
		log.Info("http_request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sr.st,
			"bytes":      sr.n,
			"latency_ms": float64(lat.Microseconds()) / 1000.0,
			"request_id": RequestIDFromContext(r.Context()),
		})
	})
}

func WithMetrics(obs *observability.Observability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{h: w, st: 200}
		next.ServeHTTP(sr, r)
		status := strconv.Itoa(sr.st)
		metrics.HTTPRequests.WithLabelValues(r.URL.Path, status).Inc()
		if obs != nil {
			obs.RecordRequest(r.Context(), r.URL.Path, status)
			obs.RecordDuration(r.Context(), r.URL.Path, time.Since(start))
		}
	})
}
