// Package notify sends fire-and-forget run notifications to an external
// webhook. Delivery is best-effort: failures are logged, never returned, and
// callers never wait on a notification.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/newsmill/newsmill/internal/logger"
)

// Notifier receives pipeline run outcomes.
type Notifier interface {
	RunCompleted(scraperName string, discovered int)
	RunFailed(scraperName, errorMessage string)
}

// Config holds webhook notifier configuration.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// WebhookNotifier posts run outcomes to a webhook URL.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
	logger     logger.Interface
}

// New creates a notifier. An empty webhook URL yields a no-op notifier.
func New(cfg Config, log logger.Interface) Notifier {
	if cfg.WebhookURL == "" {
		return NewNoOp()
	}
	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.WebhookURL,
		logger:     log,
	}
}

type event struct {
	Event      string `json:"event"`
	Scraper    string `json:"scraper"`
	Discovered int    `json:"discovered,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunCompleted reports a completed run.
func (n *WebhookNotifier) RunCompleted(scraperName string, discovered int) {
	n.send(event{Event: "run_completed", Scraper: scraperName, Discovered: discovered})
}

// RunFailed reports a critically failed run.
func (n *WebhookNotifier) RunFailed(scraperName, errorMessage string) {
	n.send(event{Event: "run_failed", Scraper: scraperName, Error: errorMessage})
}

func (n *WebhookNotifier) send(ev event) {
	go func() {
		payload, err := json.Marshal(ev)
		if err != nil {
			n.logger.Error("failed to marshal notification", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), n.httpClient.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
		if err != nil {
			n.logger.Error("failed to build notification request", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			n.logger.Warn("notification delivery failed", "error", err)
			return
		}
		resp.Body.Close()
	}()
}

// NoOpNotifier discards all notifications.
type NoOpNotifier struct{}

// NewNoOp creates a notifier that does nothing.
func NewNoOp() Notifier {
	return &NoOpNotifier{}
}

// RunCompleted does nothing.
func (n *NoOpNotifier) RunCompleted(string, int) {}

// RunFailed does nothing.
func (n *NoOpNotifier) RunFailed(string, string) {}
