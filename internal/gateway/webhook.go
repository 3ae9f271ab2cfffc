package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// ErrBadPayload marks a webhook body the handler could not parse at all.
// The dispatcher answers such requests with 400 so the sender knows the
// payload itself is broken. Every other handler error is answered with 200:
// platforms like Telegram redeliver on non-2xx, and a payload that parsed
// but failed downstream would loop forever otherwise.
var ErrBadPayload = errors.New("gateway: unparseable webhook payload")

// WebhookHandler processes a webhook payload for one source.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, headers http.Header) error
}

// WebhookDispatcher routes incoming webhooks to registered handlers.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]WebhookHandler
	logger   *slog.Logger
	metrics  *Metrics

	maxBodyBytes int64
}

// NewWebhookDispatcher creates a ready-to-use dispatcher.
func NewWebhookDispatcher(logger *slog.Logger, metrics *Metrics, maxBodyBytes int64) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers:     make(map[string]WebhookHandler),
		logger:       logger,
		metrics:      metrics,
		maxBodyBytes: maxBodyBytes,
	}
}

// Register adds a handler for the given source, replacing any previous one.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = h
}

// Sources returns the registered source names.
func (d *WebhookDispatcher) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for s := range d.handlers {
		out = append(out, s)
	}
	return out
}

// ServeHTTP implements http.Handler. It extracts the source from the chi URL
// param and dispatches to the registered handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, d.maxBodyBytes))
	if err != nil {
		d.metrics.ObserveWebhook(source, "read_error", time.Since(start))
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	handler, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		d.metrics.ObserveWebhook(source, "unregistered", time.Since(start))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"warning":"no handler registered"}`))
		return
	}

	if err := handler.HandleWebhook(r.Context(), source, body, r.Header); err != nil {
		if errors.Is(err, ErrBadPayload) {
			d.metrics.ObserveWebhook(source, "bad_payload", time.Since(start))
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		// The handler has already reported the failure through its own
		// channels; answering 200 stops the sender from redelivering.
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		d.metrics.ObserveWebhook(source, "handler_error", time.Since(start))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
		return
	}

	d.metrics.ObserveWebhook(source, "ok", time.Since(start))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
