// Package trace assigns each request an id and counts traffic, so one
// request's log lines can be stitched together across components.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

type contextKey struct{}

// Metrics tracks request counts across the middleware's lifetime.
type Metrics struct {
	TotalRequests int64
}

// Middleware tags requests with ids and exposes traffic metrics.
type Middleware struct {
	metrics Metrics
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Handler stores a fresh request id in the context and echoes it in the
// X-Request-ID response header. A client-supplied X-Request-ID is kept so
// ids survive proxy hops.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = GenerateRequestID()
		}

		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetMetrics returns a snapshot of the counters.
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: atomic.LoadInt64(&m.metrics.TotalRequests),
	}
}

// GenerateRequestID creates a unique request id.
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// RequestID extracts the request id from a context, or "" when the
// request did not pass through Handler.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
