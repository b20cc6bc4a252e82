// Package service runs the delivery pipeline: classify the inbound body,
// resolve the target order, forward with retry and fallback, and hand the
// terminal result to the HTTP layer for response composition.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hookbridge/hookbridge/common/logging"
	"github.com/hookbridge/hookbridge/internal/classifier"
	"github.com/hookbridge/hookbridge/internal/config"
	"github.com/hookbridge/hookbridge/internal/forwarder"
	"github.com/hookbridge/hookbridge/internal/metrics"
	"github.com/hookbridge/hookbridge/internal/models"
	"github.com/hookbridge/hookbridge/internal/selector"
	"github.com/hookbridge/hookbridge/pkg/redact"
)

// Sender delivers a payload to an ordered candidate list. Satisfied by
// *forwarder.Forwarder; narrowed to an interface so pipeline tests can
// substitute a fake downstream.
type Sender interface {
	Forward(ctx context.Context, candidates []forwarder.Candidate, payload []byte) models.RelayResponse
}

// RelayService holds the per-process pipeline state: immutable configuration
// and the forwarder. Deliveries are independent; the only mutable state is
// the stats block behind its own mutex.
type RelayService struct {
	targets config.TargetsConfig
	sender  Sender
	logger  *logging.Logger

	statsMutex sync.RWMutex
	stats      models.DeliveryStats
}

func NewRelayService(targets config.TargetsConfig, sender Sender, logger *logging.Logger) *RelayService {
	return &RelayService{
		targets: targets,
		sender:  sender,
		logger:  logger,
	}
}

// Process takes one raw delivery body through the whole pipeline and returns
// the terminal result. It never returns an error: every failure mode maps to
// a result the HTTP layer acknowledges, because an unacknowledged delivery
// is redelivered by the event source and duplicates the forward.
func (s *RelayService) Process(ctx context.Context, body []byte) models.RelayResult {
	metrics.EventBytesTotal.Add(float64(len(body)))

	// Payloads carry no credentials (the secret lives in the target URLs),
	// so the raw body is safe to log for correlation.
	s.logger.DebugContext(ctx, "delivery received",
		slog.Int("bytes", len(body)),
		slog.String("payload", string(body)),
	)

	cls := classifier.Classify(body)
	s.logger.DebugContext(ctx, "delivery classified",
		logging.EventType(cls.Kind.String()),
	)

	switch cls.Kind {
	case classifier.KindMalformed:
		metrics.EventsTotal.WithLabelValues("malformed").Inc()
		s.record(func(st *models.DeliveryStats) { st.Malformed++ })
		s.logger.WarnContext(ctx, "delivery body empty or unparseable, acknowledging without forward")
		return models.RelayResult{
			Kind: models.ResultMalformed,
			Response: models.RelayResponse{
				OK:    false,
				Error: "empty or unparseable request body",
			},
		}

	case classifier.KindHandshake:
		metrics.EventsTotal.WithLabelValues("handshake").Inc()
		metrics.Handshakes.Inc()
		s.record(func(st *models.DeliveryStats) { st.Handshakes++ })
		s.logger.InfoContext(ctx, "subscription validation handshake answered")
		return models.RelayResult{
			Kind:           models.ResultHandshake,
			ValidationCode: cls.ValidationCode,
		}
	}

	candidates := selector.Candidates(s.targets)
	if len(candidates) == 0 {
		metrics.EventsTotal.WithLabelValues("no_targets").Inc()
		metrics.DeliveriesDropped.Inc()
		s.record(func(st *models.DeliveryStats) {
			st.Failed++
			st.LastForwardError = "no forwarding target configured"
		})
		// Operator mistake, not a transient condition.
		s.logger.ErrorContext(ctx, "no forwarding target configured, event dropped")
		return models.RelayResult{
			Kind: models.ResultNoTargets,
			Response: models.RelayResponse{
				OK:    false,
				Error: "no forwarding target configured",
			},
		}
	}

	resp := s.sender.Forward(ctx, candidates, cls.Payload)
	if resp.OK {
		metrics.EventsTotal.WithLabelValues("forwarded").Inc()
		s.record(func(st *models.DeliveryStats) { st.Forwarded++ })
	} else {
		metrics.EventsTotal.WithLabelValues("failed").Inc()
		metrics.DeliveriesDropped.Inc()
		s.record(func(st *models.DeliveryStats) {
			st.Failed++
			st.LastForwardError = resp.Error
		})
		// The only persistent failure signal. There is no dead-letter store;
		// once the candidate list is exhausted the event is gone.
		s.logger.ErrorContext(ctx, "event dropped after retry and fallback exhaustion",
			logging.Target(resp.Target),
			logging.Status(resp.ForwardedStatus),
			logging.Attempts(resp.Attempts),
		)
	}

	return models.RelayResult{
		Kind:     models.ResultForwarded,
		Response: resp,
	}
}

func (s *RelayService) record(update func(*models.DeliveryStats)) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	s.stats.TotalDeliveries++
	s.stats.LastDelivery = time.Now()
	update(&s.stats)
}

// GetStats returns a snapshot of delivery activity since process start.
func (s *RelayService) GetStats() models.DeliveryStats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}

// GetTargets reports the configured forwarding targets with their
// credential-bearing query strings masked, for the readiness endpoint.
func (s *RelayService) GetTargets() models.TargetReport {
	var report models.TargetReport
	if s.targets.CanarySet() {
		report.Canary = redact.URL(s.targets.CanaryURL)
	}
	if s.targets.StableSet() {
		report.Stable = redact.URL(s.targets.StableURL)
	}
	return report
}
