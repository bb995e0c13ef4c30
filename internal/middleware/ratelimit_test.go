package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newLimiter(t *testing.T, rate int, window time.Duration, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{Rate: rate, Window: window, Burst: burst})
	t.Cleanup(rl.Stop)
	return rl
}

func drain(rl *RateLimiter, key string, n int) {
	for i := 0; i < n; i++ {
		rl.Allow(key)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.rate != 100 || rl.window != time.Minute || rl.burst != 20 {
		t.Errorf("expected defaults 100/1m/20, got %d/%v/%d", rl.rate, rl.window, rl.burst)
	}
}

func TestAllow_BucketAccounting(t *testing.T) {
	t.Parallel()
	// Rate 10 with burst 5 gives a fresh bucket 15 tokens. The creating
	// request spends one, leaving 14.
	rl := newLimiter(t, 10, time.Minute, 5)

	allowed, remaining, _ := rl.Allow("user:editor-1")
	if !allowed {
		t.Fatal("first request must be allowed")
	}
	if remaining != 14 {
		t.Errorf("fresh bucket should report 14 remaining, got %d", remaining)
	}

	drain(rl, "user:editor-1", 4)
	_, remaining, _ = rl.Allow("user:editor-1")
	if remaining != 9 {
		t.Errorf("after 6 requests expected 9 remaining, got %d", remaining)
	}
}

func TestAllow_DeniesWhenExhausted(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 5, time.Minute, 1)

	for i := 0; i < 6; i++ {
		if allowed, _, _ := rl.Allow("visitor"); !allowed {
			t.Fatalf("request %d should fit within rate+burst", i+1)
		}
	}

	allowed, remaining, _ := rl.Allow("visitor")
	if allowed {
		t.Error("request beyond rate+burst must be denied")
	}
	if remaining != 0 {
		t.Errorf("denied request should report 0 remaining, got %d", remaining)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 5, time.Minute, 1)

	drain(rl, "user:editor-1", 6)
	if allowed, _, _ := rl.Allow("user:editor-1"); allowed {
		t.Error("exhausted key should be denied")
	}

	allowed, remaining, _ := rl.Allow("user:admin-1")
	if !allowed {
		t.Error("an untouched key must have its own bucket")
	}
	if remaining != 5 {
		t.Errorf("fresh bucket for the second key should report 5, got %d", remaining)
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	t.Parallel()

	t.Run("full window restores the bucket", func(t *testing.T) {
		t.Parallel()
		rl := newLimiter(t, 5, 50*time.Millisecond, 1)

		drain(rl, "visitor", 6)
		if allowed, _, _ := rl.Allow("visitor"); allowed {
			t.Fatal("bucket should be empty before the window elapses")
		}

		time.Sleep(60 * time.Millisecond)

		allowed, remaining, _ := rl.Allow("visitor")
		if !allowed {
			t.Error("a full window must restore capacity")
		}
		if remaining != 5 {
			t.Errorf("expected 5 remaining after refill, got %d", remaining)
		}
	})

	t.Run("partial window restores proportionally", func(t *testing.T) {
		t.Parallel()
		rl := newLimiter(t, 100, 100*time.Millisecond, 1)

		drain(rl, "visitor", 50)
		time.Sleep(30 * time.Millisecond)

		allowed, remaining, _ := rl.Allow("visitor")
		if !allowed {
			t.Error("partial refill should leave capacity")
		}
		if remaining < 0 {
			t.Errorf("remaining must not go negative, got %d", remaining)
		}
	})

	t.Run("idle refill is capped at rate plus burst", func(t *testing.T) {
		t.Parallel()
		rl := newLimiter(t, 10, 50*time.Millisecond, 5)

		rl.Allow("visitor")
		time.Sleep(200 * time.Millisecond)

		_, remaining, _ := rl.Allow("visitor")
		if remaining > 14 {
			t.Errorf("idle bucket must cap at 14 after this request, got %d", remaining)
		}
	})
}

func TestAllow_ResetTimeTracksWindow(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 10, time.Minute, 1)

	before := time.Now()
	_, _, reset := rl.Allow("visitor")
	after := time.Now()

	if reset.Before(before.Add(time.Minute-time.Second)) || reset.After(after.Add(time.Minute+time.Second)) {
		t.Errorf("reset %v should sit roughly one window out", reset)
	}
}

func TestAllow_ConcurrentCallers(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 1000, time.Minute, 100)

	var wg sync.WaitGroup
	for worker := 0; worker < 10; worker++ {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()
			sharedKey := "shared"
			ownKey := "user:" + strconv.Itoa(worker)
			for i := 0; i < 100; i++ {
				rl.Allow(sharedKey)
				rl.Allow(ownKey)
			}
		}()
	}
	wg.Wait()
}

func TestRateLimiter_CleanupLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("drops idle buckets", func(t *testing.T) {
		t.Parallel()
		rl := NewRateLimiter(RateLimitConfig{Rate: 10, Window: 50 * time.Millisecond, Cleanup: 10 * time.Millisecond})
		defer rl.Stop()

		rl.Allow("visitor")
		time.Sleep(150 * time.Millisecond)

		rl.mu.Lock()
		_, exists := rl.buckets["visitor"]
		rl.mu.Unlock()
		if exists {
			t.Error("idle bucket should be dropped after two windows")
		}
	})

	t.Run("keeps active buckets", func(t *testing.T) {
		t.Parallel()
		rl := NewRateLimiter(RateLimitConfig{Rate: 10, Window: time.Minute, Cleanup: 10 * time.Millisecond})
		defer rl.Stop()

		rl.Allow("visitor")
		time.Sleep(50 * time.Millisecond)

		rl.mu.Lock()
		_, exists := rl.buckets["visitor"]
		rl.mu.Unlock()
		if !exists {
			t.Error("recently used bucket must survive cleanup")
		}
	})

	t.Run("stop returns", func(t *testing.T) {
		t.Parallel()
		rl := NewRateLimiter(RateLimitConfig{})
		rl.Stop()
	})
}

func TestRateLimit_SetsQuotaHeaders(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 100, time.Minute, 20)
	handler := &captureHandler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.RemoteAddr = "203.0.113.7:52000"
	rr := httptest.NewRecorder()
	RateLimit(rl)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !handler.called {
		t.Fatalf("expected the request to pass through, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("X-RateLimit-Limit: got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") == "" || rr.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("quota headers must accompany every response")
	}
}

func TestRateLimit_ThrottlesWith429(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 2, time.Minute, 1)
	handler := &captureHandler{}
	wrapped := RateLimit(rl)(handler)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
		req.RemoteAddr = "203.0.113.7:52000"
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.RemoteAddr = "203.0.113.7:52000"
	rr := httptest.NewRecorder()
	handler.called = false
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rr.Code)
	}
	if handler.called {
		t.Error("throttled request must not reach the handler")
	}

	retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After missing or malformed: %q", rr.Header().Get("Retry-After"))
	}
	if retryAfter < 1 {
		t.Errorf("Retry-After must be at least 1, got %d", retryAfter)
	}
}

func TestRateLimit_QuotaScopedToUserThenIP(t *testing.T) {
	t.Parallel()
	rl := newLimiter(t, 2, time.Minute, 1)
	handler := &captureHandler{}
	wrapped := RateLimit(rl)(handler)

	t.Run("authenticated users do not share quota", func(t *testing.T) {
		editorReq := httptest.NewRequest(http.MethodGet, "/v1/pages", nil)
		editorReq = editorReq.WithContext(context.WithValue(editorReq.Context(), UserIDKey, "user:editor-1"))
		editorReq.RemoteAddr = "203.0.113.7:52000"
		for i := 0; i < 3; i++ {
			wrapped.ServeHTTP(httptest.NewRecorder(), editorReq)
		}

		adminReq := httptest.NewRequest(http.MethodGet, "/v1/pages", nil)
		adminReq = adminReq.WithContext(context.WithValue(adminReq.Context(), UserIDKey, "user:admin-1"))
		adminReq.RemoteAddr = "203.0.113.7:52000"

		rr := httptest.NewRecorder()
		handler.called = false
		wrapped.ServeHTTP(rr, adminReq)

		if rr.Code != http.StatusOK || !handler.called {
			t.Errorf("second user on the same address must keep their quota, got %d", rr.Code)
		}
	})

	t.Run("anonymous visitors scoped by address", func(t *testing.T) {
		first := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
		first.RemoteAddr = "198.51.100.1:40000"
		for i := 0; i < 3; i++ {
			wrapped.ServeHTTP(httptest.NewRecorder(), first)
		}

		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, first)
		if rr.Code != http.StatusTooManyRequests {
			t.Errorf("exhausted address should get 429, got %d", rr.Code)
		}

		other := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
		other.RemoteAddr = "198.51.100.2:40000"
		rr2 := httptest.NewRecorder()
		wrapped.ServeHTTP(rr2, other)
		if rr2.Code != http.StatusOK {
			t.Errorf("a different address must keep its quota, got %d", rr2.Code)
		}
	})
}
