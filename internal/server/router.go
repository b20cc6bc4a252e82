package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hookbridge/hookbridge/common/middleware"
	"github.com/hookbridge/hookbridge/internal/handlers"
)

// NewRouter constructs a ServeMux with relay routes registered. Recover is
// the outermost layer so even a panic in RequestID handling is answered
// with an acknowledged failure.
func NewRouter(h *handlers.RelayHandler) http.Handler {
	mux := http.NewServeMux()

	// Subscription endpoint
	mux.HandleFunc("/api/events", h.HandleEvents)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.Recover(middleware.RequestID(mux))
}
