package models

import "time"

// SubscriptionValidationEventType marks the one-time handshake record the
// event source sends before it activates a push subscription. Every other
// event type is forwarded as-is.
const SubscriptionValidationEventType = "Microsoft.EventGrid.SubscriptionValidationEvent"

// EventRecord is one domain event. The relay only looks at two reserved
// fields; the payload itself stays opaque and is never re-serialized for
// forwarding.
type EventRecord struct {
	EventType string      `json:"eventType"`
	Data      *RecordData `json:"data,omitempty"`
}

// RecordData carries the handshake token. Data is nil on most records, so
// access goes through ValidationCode rather than direct field chasing.
type RecordData struct {
	ValidationCode string `json:"validationCode"`
}

// ValidationCode returns the handshake token, or "" when the record has no
// data object or no code. A handshake with a missing code must echo an empty
// string, never fail.
func (r EventRecord) ValidationCode() string {
	if r.Data == nil {
		return ""
	}
	return r.Data.ValidationCode
}

// ValidationResponse is the handshake reply the event source expects before
// it activates the subscription.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

// RelayResponse is the body the relay returns for every acknowledged
// delivery. The HTTP status is always 200 once the request reached the
// pipeline; the true outcome lives here.
type RelayResponse struct {
	OK              bool   `json:"ok"`
	ForwardedStatus int    `json:"forwardedStatus,omitempty"`
	Attempts        int    `json:"attempts,omitempty"`
	Target          string `json:"target,omitempty"`
	Error           string `json:"error,omitempty"`
	Details         string `json:"details,omitempty"`
	ForwardedBody   string `json:"forwardedBody,omitempty"`
}

// RelayResult is the pipeline's terminal state, consumed by the HTTP layer
// to compose the response.
type RelayResult struct {
	Kind           ResultKind
	ValidationCode string
	Response       RelayResponse
}

// ResultKind names the terminal branch the pipeline took for a delivery.
type ResultKind int

const (
	// ResultMalformed covers an empty body, unparseable JSON, and an empty
	// batch. Acknowledged with ok:false so the event source does not loop
	// on redelivery.
	ResultMalformed ResultKind = iota
	// ResultHandshake is the subscription-validation branch; terminal, no
	// forwarding happens.
	ResultHandshake
	// ResultNoTargets means neither callback slot is configured. An operator
	// mistake, still acknowledged.
	ResultNoTargets
	// ResultForwarded means the forwarder ran; Response carries its outcome,
	// success or not.
	ResultForwarded
)

func (k ResultKind) String() string {
	switch k {
	case ResultMalformed:
		return "malformed"
	case ResultHandshake:
		return "handshake"
	case ResultNoTargets:
		return "no_targets"
	case ResultForwarded:
		return "forwarded"
	default:
		return "unknown"
	}
}

// TargetReport lists the configured forwarding targets for the readiness
// endpoint, with credentials already masked. Slots left unset are omitted.
type TargetReport struct {
	Canary string `json:"canary,omitempty"`
	Stable string `json:"stable,omitempty"`
}

// DeliveryStats tracks relay activity since process start, reported on the
// readiness endpoint.
type DeliveryStats struct {
	TotalDeliveries  int64     `json:"total_deliveries"`
	Handshakes       int64     `json:"handshakes"`
	Forwarded        int64     `json:"forwarded"`
	Failed           int64     `json:"failed"`
	Malformed        int64     `json:"malformed"`
	LastDelivery     time.Time `json:"last_delivery"`
	LastForwardError string    `json:"last_forward_error,omitempty"`
}
