package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/internal/dedup"
	"github.com/busgrid/tgbridge/internal/gateway"
	"github.com/busgrid/tgbridge/pkg/message"
)

// WebhookReceiver processes incoming Telegram webhook payloads: dedup check,
// payload classification, translation, publish. It implements
// gateway.WebhookHandler.
type WebhookReceiver struct {
	sink        bus.Sink
	store       dedup.Store
	status      *statusReporter
	logger      *slog.Logger
	metrics     *transportMetrics
	botUsername string
	secret      string
}

// NewWebhookReceiver creates a new WebhookReceiver.
func NewWebhookReceiver(sink bus.Sink, store dedup.Store, status *statusReporter, logger *slog.Logger, metrics *transportMetrics, botUsername, secret string) *WebhookReceiver {
	return &WebhookReceiver{
		sink:        sink,
		store:       store,
		status:      status,
		logger:      logger,
		metrics:     metrics,
		botUsername: botUsername,
		secret:      secret,
	}
}

// HandleWebhook processes one webhook request. Only an unparseable body maps
// to an error the gateway answers with 400; every other terminal path answers
// 200 so Telegram stops redelivering.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, _ string, body []byte, headers http.Header) error {
	// Validate Telegram's secret token header if configured.
	if w.secret != "" {
		token := headers.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(w.secret), []byte(token)) != 1 {
			w.metrics.IncInbound("unknown", "bad_secret")
			return errors.New("telegram: invalid webhook secret token")
		}
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		w.metrics.IncInbound("unknown", "unparseable")
		w.status.down(ctx, componentInbound, "unexpected_update_format",
			"Inbound update in unexpected format",
			map[string]any{"error": err.Error()})
		return fmt.Errorf("telegram: invalid update JSON: %w", gateway.ErrBadPayload)
	}

	// Check-then-mark before any processing. A retransmission racing the
	// processing window may slip through; deduplication is best-effort.
	updateID := strconv.FormatInt(update.UpdateID, 10)
	seen, err := w.store.Seen(ctx, updateID)
	if err != nil {
		w.logger.Warn("dedup check failed, treating update as new",
			"update_id", updateID, "error", err)
	}
	if seen {
		w.logger.Info("ignoring duplicate update", "update_id", updateID)
		w.metrics.IncInbound("unknown", "duplicate")
		return nil
	}
	if err := w.store.MarkSeen(ctx, updateID); err != nil {
		w.logger.Warn("failed to mark update as seen", "update_id", updateID, "error", err)
	}

	var inbound *message.Inbound
	kind := "unrecognized"

	switch update.Kind() {
	case KindCallbackQuery:
		kind = "callback_query"
		inbound = translateCallbackQuery(update.CallbackQuery, w.botUsername)
	case KindInlineQuery:
		kind = "inline_query"
		inbound = translateInlineQuery(update.InlineQuery, w.botUsername)
	case KindMessage:
		kind = "message"
		if update.Message.Text == "" {
			w.logger.Info("update is not a text message", "update_id", updateID)
			w.metrics.IncInbound(kind, "no_text")
			return nil
		}
		inbound = translateMessage(update.Message, w.botUsername)
	default:
		w.logger.Info("update is not a message", "update_id", updateID)
		w.metrics.IncInbound(kind, "unrecognized")
		return nil
	}

	if err := w.sink.PublishInbound(ctx, inbound); err != nil {
		w.metrics.IncInbound(kind, "publish_error")
		return fmt.Errorf("telegram: publish inbound: %w", err)
	}

	w.metrics.IncInbound(kind, "ok")
	w.status.ok(ctx, componentInbound, "good_inbound", "Good inbound request", nil)
	return nil
}

var _ gateway.WebhookHandler = (*WebhookReceiver)(nil)
