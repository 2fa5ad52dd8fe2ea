package middleware

import (
	"testing"

	"go.uber.org/zap"
)

func TestClientRateLimiterBurst(t *testing.T) {
	limiter := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 60,
		BurstSize:         3,
	}, zap.NewNop())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst denied", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("request beyond burst allowed")
	}
	// A different client has its own bucket.
	if !limiter.Allow("10.0.0.2") {
		t.Error("separate client denied")
	}
}

func TestClientRateLimiterRemaining(t *testing.T) {
	limiter := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	}, zap.NewNop())
	defer limiter.Stop()

	remaining, limit := limiter.Remaining("10.0.0.9")
	if limit != 60 {
		t.Errorf("expected limit 60, got %d", limit)
	}
	if remaining != 5 {
		t.Errorf("expected 5 remaining before any request, got %d", remaining)
	}
	limiter.Allow("10.0.0.9")
	remaining, _ = limiter.Remaining("10.0.0.9")
	if remaining != 4 {
		t.Errorf("expected 4 remaining after one request, got %d", remaining)
	}
}
