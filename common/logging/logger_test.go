package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/hookbridge/hookbridge/common/middleware"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestWithContext_IncludesRequestID(t *testing.T) {
	logger := New(slog.LevelInfo, "json")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	got := logger.WithContext(ctx)
	if got == nil {
		t.Fatal("expected non-nil logger")
	}

	// No request ID: should fall back to the plain logger.
	if logger.WithContext(context.Background()) != logger.Logger {
		t.Error("expected the underlying logger when context has no request ID")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
