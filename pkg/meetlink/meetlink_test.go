package meetlink

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest() Request {
	start := time.Date(2026, time.January, 15, 19, 0, 0, 0, time.UTC)
	return Request{
		Subject:   "Pipeline review",
		Attendees: []string{"ana@example.com"},
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Timezone:  "America/New_York",
	}
}

func TestCreate(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sekrit" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"join_url": "https://meet.example.com/abc"})
	}))
	defer srv.Close()

	c := New(srv.URL, "sekrit", testLogger())
	url, err := c.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if url != "https://meet.example.com/abc" {
		t.Errorf("join url = %q", url)
	}
	if got.Subject != "Pipeline review" || got.Timezone != "America/New_York" {
		t.Errorf("provider saw %+v", got)
	}
}

func TestCreateRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "temporarily down", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"join_url": "https://meet.example.com/xyz"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	c.retryDelay = time.Millisecond

	url, err := c.Create(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Create() error after retries: %v", err)
	}
	if url != "https://meet.example.com/xyz" {
		t.Errorf("join url = %q", url)
	}
	if calls != 3 {
		t.Errorf("provider calls = %d, want 3", calls)
	}
}

func TestCreateDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "bad attendee list", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	if _, err := c.Create(context.Background(), testRequest()); err == nil {
		t.Fatal("Create() should fail on 400")
	}
	if calls != 1 {
		t.Errorf("provider calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestCreateSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "calendar quota exceeded"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	_, err := c.Create(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Create() should surface provider error")
	}
}
