package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookNotifier POSTs the run summary as JSON to an arbitrary endpoint.
type WebhookNotifier struct {
	webhookURL string
	headers    map[string]string
	client     *http.Client
}

// WebhookOption is a functional option for WebhookNotifier
type WebhookOption func(*WebhookNotifier)

// WithWebhookHeader adds a header to every webhook request
func WithWebhookHeader(key, value string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers[key] = value
	}
}

// WithWebhookTimeout sets the request timeout
func WithWebhookTimeout(timeout time.Duration) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client.Timeout = timeout
	}
}

// NewWebhookNotifier creates a new generic webhook notifier
func NewWebhookNotifier(webhookURL string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		webhookURL: webhookURL,
		headers:    make(map[string]string),
		client:     &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Name returns the name of the notifier
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// webhookPayload is the JSON body sent to the endpoint
type webhookPayload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Source    string      `json:"source"`
	Summary   *RunSummary `json:"summary"`
}

// Notify sends the run summary to the configured endpoint
func (w *WebhookNotifier) Notify(summary *RunSummary) error {
	event := "run.passed"
	if summary.FailedTests > 0 {
		event = "run.failed"
	} else if summary.IsRecovery {
		event = "run.recovered"
	}

	payload := webhookPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    "sheetspec",
		Summary:   summary,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest("POST", w.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range w.headers {
		req.Header.Set(key, value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
