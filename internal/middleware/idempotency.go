package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyConfig holds configuration for the replay cache
type IdempotencyConfig struct {
	TTL     time.Duration // how long a completed result is replayable (default 24h)
	Cleanup time.Duration // sweep interval for expired results (default 1h)
}

// IdempotencyStore caches completed write responses keyed by the
// Idempotency-Key header so retried submissions, like a double-clicked
// RSVP form or a republished page, replay the first result instead of
// running twice.
type IdempotencyStore struct {
	mu      sync.Mutex
	results map[string]*cachedResult
	ttl     time.Duration
	stop    chan struct{}
}

type cachedResult struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	pending   bool
	ready     chan struct{}
}

// NewIdempotencyStore creates a store and starts its sweep goroutine.
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	s := &IdempotencyStore{
		results: make(map[string]*cachedResult),
		ttl:     cfg.TTL,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop(cfg.Cleanup)
	return s
}

// Stop terminates the sweep goroutine.
func (s *IdempotencyStore) Stop() {
	close(s.stop)
}

func (s *IdempotencyStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *IdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, result := range s.results {
		if !result.pending && result.expiresAt.Before(now) {
			delete(s.results, key)
		}
	}
}

// claim registers the key as pending and returns (nil, result) when the
// caller owns the execution. When a completed result exists it is
// returned for replay. When another request holds the key, its ready
// channel is returned so the caller can wait it out.
func (s *IdempotencyStore) claim(key string) (replay *cachedResult, wait chan struct{}, owned *cachedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.results[key]; ok {
		if existing.pending {
			return nil, existing.ready, nil
		}
		if existing.expiresAt.After(time.Now()) {
			return existing, nil, nil
		}
	}

	result := &cachedResult{pending: true, ready: make(chan struct{})}
	s.results[key] = result
	return nil, nil, result
}

func (s *IdempotencyStore) complete(result *cachedResult, status int, headers http.Header, body []byte) {
	s.mu.Lock()
	result.status = status
	result.headers = headers
	result.body = body
	result.expiresAt = time.Now().Add(s.ttl)
	result.pending = false
	close(result.ready)
	s.mu.Unlock()
}

func (s *IdempotencyStore) lookup(key string) *cachedResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.results[key]
	if result == nil || result.pending {
		return nil
	}
	return result
}

// requestFingerprint binds the idempotency key to the caller and the
// exact request, so reusing a key with a different payload misses the
// cache instead of replaying an unrelated response.
func requestFingerprint(userID, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte(idempotencyKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type recordedResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordedResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordedResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func writeReplay(w http.ResponseWriter, result *cachedResult) {
	for name, values := range result.headers {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(result.status)
	_, _ = w.Write(result.body)
}

// Idempotency returns middleware that replays cached results for POST
// and PATCH requests carrying an Idempotency-Key header. Requests
// without the header pass through untouched.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				// Anonymous writers, like public RSVP submissions, are
				// keyed by remote address.
				userID = r.RemoteAddr
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := requestFingerprint(userID, idempotencyKey, r.Method, r.URL.Path, body)

			replay, wait, owned := store.claim(key)
			if replay != nil {
				writeReplay(w, replay)
				return
			}
			if wait != nil {
				<-wait
				if result := store.lookup(key); result != nil {
					writeReplay(w, result)
					return
				}
				// The in-flight owner vanished without completing.
				// Fall through and execute the request ourselves.
				_, _, owned = store.claim(key)
				if owned == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			recorder := &recordedResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			store.complete(owned, recorder.status, recorder.Header().Clone(), recorder.body.Bytes())
		})
	}
}
