// Package classifier decides what an inbound delivery is before anything
// else touches it: a subscription handshake, a forwardable event batch, or
// garbage that still has to be acknowledged.
package classifier

import (
	"bytes"
	"encoding/json"

	"github.com/hookbridge/hookbridge/internal/models"
)

// Kind is the classification of one inbound delivery body.
type Kind int

const (
	// KindMalformed: body absent, not valid JSON, or an empty batch.
	KindMalformed Kind = iota
	// KindHandshake: first record is a subscription-validation event.
	KindHandshake
	// KindForwardable: everything else, unrecognized event types included.
	KindForwardable
)

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindForwardable:
		return "forwardable"
	default:
		return "malformed"
	}
}

// Result carries the classification together with whatever the downstream
// stages need: the handshake token for the handshake branch, the untouched
// payload bytes for the forwarding branch.
type Result struct {
	Kind           Kind
	ValidationCode string
	// Payload is the original request body, byte for byte. Array-vs-single
	// normalization is the downstream receiver's job, not the relay's.
	Payload []byte
}

// Classify inspects a raw delivery body. It never fails: malformed input is
// a classification, not an error, because the relay must acknowledge it
// either way.
func Classify(body []byte) Result {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Result{Kind: KindMalformed}
	}

	first, ok := firstRecord(trimmed)
	if !ok {
		return Result{Kind: KindMalformed}
	}

	if first.EventType == models.SubscriptionValidationEventType {
		return Result{
			Kind:           KindHandshake,
			ValidationCode: first.ValidationCode(),
		}
	}

	return Result{
		Kind:    KindForwardable,
		Payload: body,
	}
}

// firstRecord extracts the first (or only) record from a body that is a
// single JSON object or an array of objects. Field extraction is
// best-effort: a record whose reserved fields have unexpected types is an
// unrecognized event, not an error.
func firstRecord(body []byte) (models.EventRecord, bool) {
	if body[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil || len(batch) == 0 {
			return models.EventRecord{}, false
		}
		body = batch[0]
	}

	var record models.EventRecord
	// Ignore unmarshal errors: a non-object record or an oddly typed
	// eventType just yields the zero record, which classifies as forwardable.
	_ = json.Unmarshal(body, &record)
	return record, true
}
