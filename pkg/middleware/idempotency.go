package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"
)

// ReplayStore caches the response produced under an idempotency key so a
// retried request gets the original outcome instead of a second execution.
type ReplayStore interface {
	Get(key string) (*StoredResponse, bool)
	Set(key string, response *StoredResponse)
	Stop()
}

type StoredResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	StoredAt   time.Time
}

// MemoryReplayStore holds responses in memory with a TTL. Expired entries are
// swept periodically so the map does not grow without bound.
type MemoryReplayStore struct {
	mu        sync.RWMutex
	responses map[string]*StoredResponse
	ttl       time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewMemoryReplayStore(ttl time.Duration) *MemoryReplayStore {
	store := &MemoryReplayStore{
		responses: make(map[string]*StoredResponse),
		ttl:       ttl,
		stop:      make(chan struct{}),
	}
	go store.sweep()
	return store
}

func (s *MemoryReplayStore) Get(key string) (*StoredResponse, bool) {
	s.mu.RLock()
	response, ok := s.responses[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(response.StoredAt) > s.ttl {
		s.mu.Lock()
		delete(s.responses, key)
		s.mu.Unlock()
		return nil, false
	}
	return response, true
}

func (s *MemoryReplayStore) Set(key string, response *StoredResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	response.StoredAt = time.Now()
	s.responses[key] = response
}

func (s *MemoryReplayStore) sweep() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.responses {
				if time.Since(response.StoredAt) > s.ttl {
					delete(s.responses, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryReplayStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through untouched, and only successful
// responses are stored, so a failed attempt can still be retried.
func Idempotency(store ReplayStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if stored, ok := store.Get(key); ok {
				replay(w, stored)
				return
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				store.Set(key, &StoredResponse{
					StatusCode: recorder.statusCode,
					Headers:    w.Header().Clone(),
					Body:       recorder.body.Bytes(),
				})
			}
		})
	}
}

func replay(w http.ResponseWriter, stored *StoredResponse) {
	for name, values := range stored.Headers {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
}
