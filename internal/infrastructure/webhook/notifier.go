// Package webhook posts activity events to configured HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
)

// Endpoint is an outgoing webhook target.
type Endpoint struct {
	Name       string
	URL        string
	Secret     string
	Events     []string // actions to deliver; empty means all
	MaxRetries int // retries after the first attempt
	RetryDelay time.Duration
}

// Notifier delivers activity events to endpoints in the background. Failed
// deliveries go to the dead letter store.
type Notifier struct {
	endpoints  []Endpoint
	client     *http.Client
	deadLetter *DeadLetterStore
	logger     *slog.Logger
	wg         sync.WaitGroup
}

var _ activity.Sink = (*Notifier)(nil)

// NewNotifier creates a notifier with the given endpoints and dead letter store.
func NewNotifier(endpoints []Endpoint, deadLetter *DeadLetterStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		deadLetter: deadLetter,
		logger:     logger,
	}
}

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      activity.Event `json:"data"`
}

// Publish sends event to every matching endpoint without blocking. Deliveries
// outlive ctx cancellation; use Wait to drain them.
func (n *Notifier) Publish(ctx context.Context, event activity.Event) {
	body, err := json.Marshal(Payload{
		EventType: event.Action,
		Timestamp: event.Timestamp,
		Data:      event,
	})
	if err != nil {
		n.logger.Error("failed to marshal webhook payload", "event", event.ID, "error", err)
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, ep := range n.endpoints {
		if !matchesFilter(ep, event.Action) {
			continue
		}
		n.wg.Add(1)
		go func(ep Endpoint) {
			defer n.wg.Done()
			n.deliver(ctx, ep, event, body)
		}(ep)
	}
}

// Wait blocks until in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func matchesFilter(ep Endpoint, action string) bool {
	if len(ep.Events) == 0 {
		return true
	}
	for _, e := range ep.Events {
		if e == action {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(ctx context.Context, ep Endpoint, event activity.Event, body []byte) {
	maxRetries := ep.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := ep.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	attempts := 0
	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   maxRetries + 1,
		InitialDelay:  retryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		attempts++
		return struct{}{}, n.send(ctx, ep, body)
	})
	if err == nil {
		n.logger.Debug("webhook delivered", "webhook", ep.Name, "event", event.ID)
		return
	}

	n.logger.Warn("webhook delivery failed", "webhook", ep.Name, "event", event.ID, "attempts", attempts, "error", err)
	if n.deadLetter == nil {
		return
	}
	dl := DeadLetter{
		Timestamp:   time.Now(),
		WebhookName: ep.Name,
		URL:         ep.URL,
		EventType:   event.Action,
		EventID:     event.ID,
		Payload:     string(body),
		Error:       err.Error(),
		Attempts:    attempts,
	}
	if err := n.deadLetter.Append(dl); err != nil {
		n.logger.Error("failed to write dead letter", "webhook", ep.Name, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, ep Endpoint, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Taskport-Webhook/1.0")

	if ep.Secret != "" {
		req.Header.Set("X-Taskport-Signature", sign(body, ep.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// sign computes HMAC-SHA256 of the payload using the secret.
func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
