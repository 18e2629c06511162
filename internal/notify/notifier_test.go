package notify_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/notify"
)

func TestNew_EmptyURLYieldsNoOp(t *testing.T) {
	t.Parallel()

	n := notify.New(notify.Config{}, logger.NewNoOp())
	assert.IsType(t, &notify.NoOpNotifier{}, n)
}

func TestWebhookNotifier_RunCompleted(t *testing.T) {
	t.Parallel()

	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer srv.Close()

	n := notify.New(notify.Config{WebhookURL: srv.URL, Timeout: 5 * time.Second}, logger.NewNoOp())
	n.RunCompleted("govexec-politics", 12)

	select {
	case payload := <-received:
		assert.Equal(t, "run_completed", payload["event"])
		assert.Equal(t, "govexec-politics", payload["scraper"])
		assert.EqualValues(t, 12, payload["discovered"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
}

func TestWebhookNotifier_RunFailed(t *testing.T) {
	t.Parallel()

	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
	}))
	defer srv.Close()

	n := notify.New(notify.Config{WebhookURL: srv.URL, Timeout: 5 * time.Second}, logger.NewNoOp())
	n.RunFailed("govexec-politics", "connection refused")

	select {
	case payload := <-received:
		assert.Equal(t, "run_failed", payload["event"])
		assert.Equal(t, "connection refused", payload["error"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
}

func TestWebhookNotifier_DeliveryFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	// Unreachable server: the call must still return immediately.
	n := notify.New(notify.Config{
		WebhookURL: "http://127.0.0.1:1",
		Timeout:    time.Second,
	}, logger.NewNoOp())

	done := make(chan struct{})
	go func() {
		n.RunCompleted("scraper", 1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("notification call blocked")
	}
}
