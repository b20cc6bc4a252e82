package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNoOpRateLimiter(t *testing.T) {
	limiter := &NoOpRateLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Errorf("Allow() error = %v, want nil", err)
		}
		if !allowed {
			t.Error("Allow() = false, want true")
		}
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 3, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() call %d error = %v", i+1, err)
		}
		if !allowed {
			t.Errorf("Allow() call %d = false, want true (limit is 3)", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("Allow() = true after limit exhausted, want false")
	}

	// A different key has its own budget.
	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Allow() for separate key = false, want true")
	}
}

func TestRedisRateLimiter_KeyTTLMatchesWindow(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 10, 2*time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	defer limiter.Close()

	if _, err := limiter.Allow(context.Background(), "10.0.0.3"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	// A TTL shorter than the window would drop entries while they still
	// count, letting a long window under-count.
	if got := mr.TTL("ratelimit:10.0.0.3"); got != 2*time.Minute {
		t.Errorf("key TTL = %v, want %v", got, 2*time.Minute)
	}
}

func TestNewRedisRateLimiter_BadURL(t *testing.T) {
	if _, err := NewRedisRateLimiter("not-a-url", 10, time.Minute); err == nil {
		t.Error("expected error for invalid redis URL")
	}
}
