package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNotifierDeliversEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode event: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second)
	n.Send(context.Background(), EventValidationReport, map[string]int{"findings": 3})

	if got.Type != EventValidationReport {
		t.Errorf("event type = %q", got.Type)
	}
	if got.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestNilNotifierDropsEvents(t *testing.T) {
	var n *Notifier
	// Must not panic.
	n.Send(context.Background(), EventInferenceCompleted, nil)

	if state := n.BreakerState(); state != "disabled" {
		t.Errorf("nil notifier state = %q, want disabled", state)
	}
	if NewNotifier("", time.Second) != nil {
		t.Error("empty URL should return a nil notifier")
	}
}

func TestNotifierOpensBreakerAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second)

	// Default breaker trips after 3 consecutive failures.
	for i := 0; i < 5; i++ {
		n.Send(context.Background(), EventImportCompleted, nil)
	}

	if state := n.BreakerState(); state != "open" {
		t.Errorf("breaker state = %q, want open", state)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("endpoint hit %d times, want 3 (breaker rejects the rest)", got)
	}
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(CircuitBreakerConfig{
		MaxFailures:          1,
		Timeout:              20 * time.Millisecond,
		HalfOpenMaxSuccesses: 1,
	})
	ctx := context.Background()

	fail := func() (interface{}, error) { return nil, context.DeadlineExceeded }
	ok := func() (interface{}, error) { return "ok", nil }

	if _, err := cb.Execute(ctx, fail); err == nil {
		t.Fatal("expected failure")
	}
	if cb.State() != "open" {
		t.Fatalf("state = %q, want open", cb.State())
	}
	if _, err := cb.Execute(ctx, ok); err != ErrCircuitOpen {
		t.Fatalf("open breaker returned %v, want ErrCircuitOpen", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := cb.Execute(ctx, ok); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if cb.State() != "closed" {
		t.Errorf("state after recovery = %q, want closed", cb.State())
	}

	m := cb.Metrics()
	if m.TotalRequests == 0 || m.TotalFailures == 0 || m.TotalSuccesses == 0 {
		t.Errorf("metrics not tracked: %+v", m)
	}
}
