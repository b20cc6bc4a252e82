package logging

import (
	"log/slog"

	"github.com/hookbridge/hookbridge/pkg/redact"
)

// Common field names for consistent logging across the relay.
const (
	FieldService   = "service"
	FieldTarget    = "target"
	FieldTargetURL = "target_url"
	FieldAttempt   = "attempt"
	FieldAttempts  = "attempts"
	FieldStatus    = "status"
	FieldEventType = "event_type"
	FieldDelay     = "delay_ms"
	FieldError     = "error"
	FieldIP        = "ip"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Target returns a slog attribute for a forwarding target's label
// ("canary" or "stable").
func Target(label string) slog.Attr {
	return slog.String(FieldTarget, label)
}

// TargetURL returns a slog attribute for a forwarding target URL with its
// credential query string masked. This is the only sanctioned way to put a
// callback URL into a log line.
func TargetURL(raw string) slog.Attr {
	return slog.String(FieldTargetURL, redact.URL(raw))
}

// Attempt returns a slog attribute for the current attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(FieldAttempt, n)
}

// Attempts returns a slog attribute for the total attempt count.
func Attempts(n int) slog.Attr {
	return slog.Int(FieldAttempts, n)
}

// Status returns a slog attribute for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// EventType returns a slog attribute for an event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Delay returns a slog attribute for a backoff delay in milliseconds.
func Delay(ms int64) slog.Attr {
	return slog.Int64(FieldDelay, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// IP returns a slog attribute for a client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}
