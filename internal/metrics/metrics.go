package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound delivery metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_events_total",
			Help: "Total number of inbound deliveries by terminal classification",
		},
		[]string{"result"},
	)

	EventBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_event_bytes_total",
			Help: "Total bytes of event payload received",
		},
	)

	Handshakes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_handshakes_total",
			Help: "Total number of subscription validation handshakes answered",
		},
	)

	// Forwarding metrics
	ForwardAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_forward_attempts_total",
			Help: "Per-target forwarding outcomes",
		},
		[]string{"target", "result"},
	)

	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hookbridge_relay_forward_duration_seconds",
			Help:    "Duration of individual downstream POST attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	Fallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_fallbacks_total",
			Help: "Times delivery fell through from one target to the next",
		},
	)

	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_deliveries_dropped_total",
			Help: "Events acknowledged upstream but not delivered to any target",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookbridge_relay_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"key"},
	)
)
