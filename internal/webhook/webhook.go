// Package webhook fires outbound webhook events to a configured URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Dispatcher posts event payloads to the configured webhook URL.
type Dispatcher struct {
	url    string
	client *http.Client
	log    *zap.SugaredLogger
}

// New creates a Dispatcher with a default HTTP client. An empty URL
// disables dispatch.
func New(url string, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Payload is the JSON body sent to the webhook URL.
type Payload struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Fire sends an event asynchronously.
// Retries 3x with exponential backoff (500ms, 1s, 2s).
func (d *Dispatcher) Fire(event string, data interface{}) {
	if d == nil || d.url == "" {
		return
	}
	body, err := json.Marshal(Payload{Event: event, Timestamp: time.Now(), Data: data})
	if err != nil {
		d.log.Warnw("webhook marshal failed", "event", event, "err", err)
		return
	}
	go d.fire(body)
}

func (d *Dispatcher) fire(body []byte) {
	delays := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	for i, delay := range delays {
		if i > 0 {
			time.Sleep(delay)
		}
		status, err := d.post(body)
		if err == nil && status < 400 {
			return
		}
		d.log.Warnw("webhook delivery attempt failed", "attempt", i+1, "status", status, "err", err)
	}
}

func (d *Dispatcher) post(body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("webhook.post: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook.post: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
