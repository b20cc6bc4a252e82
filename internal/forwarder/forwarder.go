// Package forwarder delivers an accepted event payload to the configured
// downstream callbacks: bounded retry with exponential backoff per target,
// and an ordered canary-to-stable fallback across targets.
package forwarder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hookbridge/hookbridge/common/logging"
	"github.com/hookbridge/hookbridge/internal/config"
	"github.com/hookbridge/hookbridge/internal/metrics"
	"github.com/hookbridge/hookbridge/internal/models"
	"github.com/hookbridge/hookbridge/pkg/redact"
)

// Candidate is one downstream target, in attempt order. Label identifies
// the slot's role for logging and fallback gating only.
type Candidate struct {
	Label string
	URL   string
}

// AttemptResult is the outcome of posting to one candidate. Status is 0
// when no HTTP response was received at all.
type AttemptResult struct {
	Status   int
	Body     []byte
	Attempts int
}

// NetworkError marks a candidate that never produced an HTTP response
// within the retry budget, as opposed to one that answered with a bad
// status. It keeps the last partial result so the final outcome can still
// report how many attempts were burned.
type NetworkError struct {
	Last AttemptResult
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response after %d attempts: %v", e.Last.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Forwarder executes the delivery protocol. It is safe for concurrent use;
// all state is read-only after construction except the shared HTTP client's
// connection pool.
type Forwarder struct {
	httpClient *http.Client
	cfg        config.ForwardConfig
	logger     *logging.Logger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

func New(cfg config.ForwardConfig, logger *logging.Logger) *Forwarder {
	return &Forwarder{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Forward tries candidates in order and returns the terminal outcome.
//
// A 2xx is terminal. A failure on a non-final candidate falls through to the
// next one when fallback is enabled; otherwise, and always on the final
// candidate, the failure is the outcome. Candidates are attempted strictly
// one at a time: posting to both slots concurrently would double-deliver,
// and the downstream receiver has no idempotency key.
func (f *Forwarder) Forward(ctx context.Context, candidates []Candidate, payload []byte) models.RelayResponse {
	var lastResp models.RelayResponse

	for i, cand := range candidates {
		final := i == len(candidates)-1

		result, err := f.postWithRetry(ctx, cand, payload)
		if err != nil {
			metrics.ForwardAttempts.WithLabelValues(cand.Label, "network_error").Inc()
			lastResp = models.RelayResponse{
				OK:       false,
				Attempts: result.Attempts,
				Target:   cand.Label,
				Error:    "forward failed without a response",
				Details:  err.Error(),
			}

			if final || !f.cfg.FallbackEnabled {
				return lastResp
			}
			f.logger.WarnContext(ctx, "target unreachable, falling back",
				logging.Target(cand.Label),
				logging.Attempts(result.Attempts),
				logging.Error(err),
			)
			metrics.Fallbacks.Inc()
			continue
		}

		ok := result.Status >= 200 && result.Status < 300
		lastResp = models.RelayResponse{
			OK:              ok,
			ForwardedStatus: result.Status,
			Attempts:        result.Attempts,
			Target:          cand.Label,
		}
		if !ok {
			lastResp.Error = fmt.Sprintf("downstream returned status %d", result.Status)
		}
		if f.cfg.IncludeResponseBody {
			lastResp.ForwardedBody = truncate(result.Body, f.cfg.ResponseBodyLimit)
		}

		if ok {
			metrics.ForwardAttempts.WithLabelValues(cand.Label, "success").Inc()
			f.logger.InfoContext(ctx, "event forwarded",
				logging.Target(cand.Label),
				logging.Status(result.Status),
				logging.Attempts(result.Attempts),
			)
			return lastResp
		}

		metrics.ForwardAttempts.WithLabelValues(cand.Label, "failed").Inc()
		if final || !f.cfg.FallbackEnabled {
			return lastResp
		}

		f.logger.WarnContext(ctx, "target rejected event, falling back",
			logging.Target(cand.Label),
			logging.Status(result.Status),
			logging.Attempts(result.Attempts),
		)
		metrics.Fallbacks.Inc()
	}

	return lastResp
}

// postWithRetry issues up to MaxAttempts POSTs to one candidate.
//
// 2xx returns immediately. 408, 429, and any 5xx are presumed transient and
// retried after a backoff sleep; any other status is final for this
// candidate and returned without burning the rest of the budget. A
// retryable status on the last attempt is a normal outcome, not an error.
// Only exhausting the budget without ever receiving a response yields a
// NetworkError.
func (f *Forwarder) postWithRetry(ctx context.Context, cand Candidate, payload []byte) (AttemptResult, error) {
	result := AttemptResult{}

	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		result.Attempts = attempt

		start := time.Now()
		status, body, err := f.post(ctx, cand.URL, payload)
		metrics.ForwardDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			f.logger.WarnContext(ctx, "forward attempt failed",
				logging.Target(cand.Label),
				logging.TargetURL(cand.URL),
				logging.Attempt(attempt),
				logging.Error(err),
			)
			if attempt < f.cfg.MaxAttempts {
				f.backoff(ctx, cand.Label, attempt)
				continue
			}
			return result, &NetworkError{Last: result, Err: err}
		}

		result.Status = status
		result.Body = body

		if status >= 200 && status < 300 {
			return result, nil
		}

		if !retryable(status) {
			f.logger.WarnContext(ctx, "forward rejected with non-retryable status",
				logging.Target(cand.Label),
				logging.Status(status),
				logging.Attempt(attempt),
			)
			return result, nil
		}

		f.logger.WarnContext(ctx, "forward attempt got retryable status",
			logging.Target(cand.Label),
			logging.Status(status),
			logging.Attempt(attempt),
		)
		if attempt < f.cfg.MaxAttempts {
			f.backoff(ctx, cand.Label, attempt)
		}
	}

	return result, nil
}

func (f *Forwarder) post(ctx context.Context, target string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", sanitizeError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", sanitizeError(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, body, nil
}

// sanitizeError masks the callback URL embedded in transport errors.
// http.Client.Do wraps every failure in a *url.Error whose message carries
// the full request URL, query string included, and these errors end up in
// log lines and in the delivery response body. The underlying cause stays
// wrapped so errors.Is still matches context cancellation.
func sanitizeError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s %s: %w", uerr.Op, redact.URL(uerr.URL), uerr.Err)
	}
	return err
}

func (f *Forwarder) backoff(ctx context.Context, label string, attempt int) {
	delay := backoffDelay(attempt, f.cfg.BaseBackoff, f.cfg.MaxBackoff)
	f.logger.DebugContext(ctx, "backing off before retry",
		logging.Target(label),
		logging.Attempt(attempt),
		logging.Delay(delay.Milliseconds()),
	)
	f.sleep(delay)
}

// retryable reports whether an HTTP status is presumed transient.
func retryable(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
