package telegram

import (
	"context"
	"log/slog"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/pkg/message"
)

// Status components. Dashboards track these independently of message-level
// acks and nacks.
const (
	componentSetup         = "telegram_setup"
	componentWebhook       = "telegram_webhook"
	componentInbound       = "telegram_inbound"
	componentOutbound      = "telegram_outbound"
	componentInlineReply   = "telegram_inline_reply"
	componentCallbackReply = "telegram_callback_reply"
)

// statusReporter publishes structured health-status events. Publish failures
// are logged and swallowed; status reporting never breaks message flow.
type statusReporter struct {
	sink   bus.Sink
	logger *slog.Logger
}

func (r *statusReporter) ok(ctx context.Context, component, typ, msg string, details map[string]any) {
	r.publish(ctx, &message.StatusEvent{
		Status:    message.StatusOK,
		Component: component,
		Type:      typ,
		Message:   msg,
		Details:   details,
	})
}

func (r *statusReporter) down(ctx context.Context, component, typ, msg string, details map[string]any) {
	r.publish(ctx, &message.StatusEvent{
		Status:    message.StatusDown,
		Component: component,
		Type:      typ,
		Message:   msg,
		Details:   details,
	})
}

func (r *statusReporter) publish(ctx context.Context, ev *message.StatusEvent) {
	if err := r.sink.PublishStatus(ctx, ev); err != nil {
		r.logger.Warn("failed to publish status event",
			"component", ev.Component, "type", ev.Type, "error", err)
	}
}
