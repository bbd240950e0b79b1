package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultIdempotencyHeader = "Idempotency-Key"

	idempotencySweepInterval = time.Hour
)

// IdempotencyStore remembers successful responses per key and lets one
// request at a time own a key that has no response yet.
type IdempotencyStore interface {
	// Claim returns the stored response for key, or makes the caller the
	// key's owner. While another owner is running Claim waits for it or for
	// ctx. An owner must call Finish.
	Claim(ctx context.Context, key string) (cached *CachedResponse, owner bool, err error)
	// Finish stores response for key and wakes waiting claims. A nil
	// response gives the key up without storing anything.
	Finish(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

type idempotencyEntry struct {
	response *CachedResponse
	running  chan struct{}
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go store.sweep()

	return store
}

func (s *InMemoryIdempotencyStore) Claim(ctx context.Context, key string) (*CachedResponse, bool, error) {
	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		switch {
		case !ok || (e.running == nil && s.expired(e.response)):
			s.entries[key] = &idempotencyEntry{running: make(chan struct{})}
			s.mu.Unlock()
			return nil, true, nil
		case e.running == nil:
			s.mu.Unlock()
			return e.response, false, nil
		}
		running := e.running
		s.mu.Unlock()

		select {
		case <-running:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

func (s *InMemoryIdempotencyStore) Finish(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.running == nil {
		return
	}
	close(e.running)
	if response == nil {
		delete(s.entries, key)
		return
	}
	response.CreatedAt = s.now()
	s.entries[key] = &idempotencyEntry{response: response}
}

func (s *InMemoryIdempotencyStore) expired(r *CachedResponse) bool {
	return s.now().Sub(r.CreatedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) sweep() {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if e.running == nil && s.expired(e.response) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response of a POST carrying the same
// key on the same path. A retry that arrives while the first attempt is
// still running waits for it. Other methods pass through untouched.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			cached, owner, err := store.Claim(r.Context(), key)
			if err != nil {
				writeJSONError(w, http.StatusConflict, `{"error":"A request with this idempotency key is still running","code":"CONFLICT"}`)
				return
			}
			if !owner {
				replayCachedResponse(w, cached)
				return
			}

			var stored *CachedResponse
			defer func() { store.Finish(key, stored) }()

			capture := &responseCapture{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(capture, r)

			if capture.statusCode >= 200 && capture.statusCode < 300 {
				stored = &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				}
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
