package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hookbridge/hookbridge/common/logging"
	"github.com/hookbridge/hookbridge/internal/models"
	"github.com/hookbridge/hookbridge/internal/ratelimit"
)

// RelayService is the pipeline behind the endpoint. Narrowed to an
// interface so handler tests can mock delivery outcomes.
type RelayService interface {
	Process(ctx context.Context, body []byte) models.RelayResult
	GetStats() models.DeliveryStats
	GetTargets() models.TargetReport
}

// RelayHandler terminates the event subscription endpoint and composes the
// relay's own responses.
//
// Response policy: once a request reaches the pipeline it is answered 200,
// whatever happened downstream — the true outcome goes in the body. The
// event source redelivers on non-2xx, and a redelivered batch that was
// already forwarded would duplicate events downstream. This includes the
// malformed-body case: a body that will never parse would otherwise
// redeliver forever.
type RelayHandler struct {
	service     RelayService
	rateLimiter ratelimit.RateLimiter
	logger      *logging.Logger
	maxBodySize int64
}

func NewRelayHandler(service RelayService, rateLimiter ratelimit.RateLimiter, logger *logging.Logger, maxBodySize int64) *RelayHandler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
	}
	return &RelayHandler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// HandleEvents accepts one delivery from the event source: either the
// subscription validation handshake or a batch of events to forward.
func (h *RelayHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendJSON(w, http.StatusMethodNotAllowed, models.RelayResponse{
			OK:    false,
			Error: "method not allowed",
		})
		return
	}

	sourceIP := getClientIP(r)

	// A throttled delivery is the one case that is deliberately not
	// acknowledged: the event source will redeliver it once load drops.
	allowed, err := h.rateLimiter.Allow(r.Context(), sourceIP)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rate limiter unavailable, allowing delivery",
			logging.IP(sourceIP),
			logging.Error(err),
		)
		allowed = true
	}
	if !allowed {
		h.sendJSON(w, http.StatusTooManyRequests, models.RelayResponse{
			OK:    false,
			Error: "rate limit exceeded",
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		// Oversized or interrupted body: still acknowledge, same policy as
		// unparseable input.
		h.logger.WarnContext(r.Context(), "failed to read delivery body",
			logging.IP(sourceIP),
			logging.Error(err),
		)
		h.sendJSON(w, http.StatusOK, models.RelayResponse{
			OK:    false,
			Error: "failed to read request body",
		})
		return
	}
	defer r.Body.Close()

	result := h.service.Process(r.Context(), body)

	switch result.Kind {
	case models.ResultHandshake:
		h.sendJSON(w, http.StatusOK, models.ValidationResponse{
			ValidationResponse: result.ValidationCode,
		})
	default:
		h.sendJSON(w, http.StatusOK, result.Response)
	}
}

func (h *RelayHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *RelayHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"targets": h.service.GetTargets(),
		"stats":   h.service.GetStats(),
	})
}

func (h *RelayHandler) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
