package forwarder

import (
	"math/rand"
	"time"
)

// jitterCap bounds the random spread added to each backoff interval.
// Randomizing within a small window is enough to de-synchronize retry storms
// across concurrent deliveries without inflating worst-case latency.
const jitterCap = 250 * time.Millisecond

// backoffDelay computes the sleep before retry number attempt (1-based:
// attempt 1 is the delay after the first failed request). The exponential
// component doubles per attempt and is capped at max; jitter is uniform in
// [0, min(jitterCap, exponential)); the sum is capped at max again so the
// worst-case per-candidate latency stays bounded by
// (maxAttempts-1) * max of sleeping.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	exp := base << (attempt - 1)
	if exp > max || exp <= 0 { // <= 0 guards shift overflow
		exp = max
	}

	jitterBound := jitterCap
	if exp < jitterBound {
		jitterBound = exp
	}

	delay := exp
	if jitterBound > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterBound)))
	}
	if delay > max {
		delay = max
	}
	return delay
}
