package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := NewMemoryReplayStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"booking_id":"b-1"}`))
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	retry := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	retry.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(second, retry)

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("expected replayed status 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected replayed body %q, got %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_MissingKeyPassesThrough(t *testing.T) {
	store := NewMemoryReplayStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
	}

	if calls != 2 {
		t.Errorf("expected handler to run per request without a key, ran %d times", calls)
	}
}

func TestIdempotency_FailedResponseNotStored(t *testing.T) {
	store := NewMemoryReplayStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		handler.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusCreated {
			t.Errorf("expected failed first attempt to be retried, got %d", rec.Code)
		}
	}

	if calls != 2 {
		t.Errorf("expected retry after a non-2xx response, handler ran %d times", calls)
	}
}

func TestMemoryReplayStore_ExpiresEntries(t *testing.T) {
	store := NewMemoryReplayStore(10 * time.Millisecond)
	defer store.Stop()

	store.Set("key-1", &StoredResponse{StatusCode: http.StatusCreated})
	if _, ok := store.Get("key-1"); !ok {
		t.Fatalf("expected fresh entry to be present")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("key-1"); ok {
		t.Errorf("expected entry to expire after the TTL")
	}
}
