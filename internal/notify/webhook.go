package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Event types delivered to webhook subscribers.
const (
	EventValidationReport   = "validation_report"
	EventInferenceCompleted = "inference_completed"
	EventImportCompleted    = "import_completed"
)

// Event is the JSON envelope posted to the webhook endpoint.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Notifier posts events to a webhook URL through a circuit breaker. A nil
// Notifier (no URL configured) is valid and drops every event, so callers
// never need to guard the Send call.
type Notifier struct {
	url     string
	client  *http.Client
	breaker *CircuitBreaker
}

// NewNotifier creates a webhook notifier. An empty url returns nil, which
// disables delivery.
func NewNotifier(url string, timeout time.Duration) *Notifier {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: NewCircuitBreaker(),
	}
}

// Send posts one event to the webhook endpoint. Failures are logged, never
// returned up, so a broken endpoint does not fail the operation that
// produced the event; the breaker keeps repeated failures cheap.
func (n *Notifier) Send(ctx context.Context, eventType string, payload interface{}) {
	if n == nil {
		return
	}

	body, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		log.Printf("notify: failed to marshal %s event: %v", eventType, err)
		return
	}

	_, err = n.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned %s", resp.Status)
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("notify: %s delivery failed: %v", eventType, err)
	}
}

// BreakerState reports the delivery breaker state for health output.
// Returns "disabled" on a nil notifier.
func (n *Notifier) BreakerState() string {
	if n == nil {
		return "disabled"
	}
	return n.breaker.State()
}
