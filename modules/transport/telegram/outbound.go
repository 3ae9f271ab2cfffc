package telegram

import (
	"context"
	"log/slog"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/pkg/message"
)

// deliverer renders canonical outbound messages into Telegram API calls and
// interprets responses into acks, nacks, and status events. Each message is
// consumed exactly once; failures surface once and are never retried here.
type deliverer struct {
	client  *Client
	sink    bus.Sink
	status  *statusReporter
	logger  *slog.Logger
	metrics *transportMetrics
}

// HandleOutbound implements bus.OutboundHandler.
func (d *deliverer) HandleOutbound(ctx context.Context, msg *message.Outbound) error {
	switch msg.Kind() {
	case message.PayloadInlineQuery:
		return d.deliverInlineReply(ctx, msg)
	case message.PayloadCallbackQuery:
		return d.deliverCallbackReply(ctx, msg)
	default:
		return d.deliverMessage(ctx, msg)
	}
}

func (d *deliverer) deliverMessage(ctx context.Context, msg *message.Outbound) error {
	req := renderSendMessage(msg)
	code, body, err := d.client.SendMessage(ctx, req)
	return d.finish(ctx, msg, "Message", componentOutbound, "sendMessage", code, body, err, nil)
}

func (d *deliverer) deliverInlineReply(ctx context.Context, msg *message.Outbound) error {
	req, err := renderAnswerInlineQuery(msg)
	if err != nil {
		// Local validation failure: no HTTP call is made, but the bus still
		// sees exactly one nack and one down status.
		d.metrics.IncOutbound("answerInlineQuery", "bad_query_reply")
		d.nack(ctx, msg, "Inline query reply not sent: "+err.Error())
		d.status.down(ctx, componentInlineReply, "bad_query_reply",
			"Inline query reply rejected before send", map[string]any{
				"error":           err.Error(),
				"inline_query_id": msg.TransportMetadata.InlineQueryID,
			})
		return nil
	}

	code, body, callErr := d.client.AnswerInlineQuery(ctx, req)
	return d.finish(ctx, msg, "Inline query reply", componentInlineReply, "answerInlineQuery",
		code, body, callErr, map[string]any{
			"inline_query_id": msg.TransportMetadata.InlineQueryID,
		})
}

func (d *deliverer) deliverCallbackReply(ctx context.Context, msg *message.Outbound) error {
	body := renderAnswerCallbackQuery(msg)
	code, respBody, err := d.client.AnswerCallbackQuery(ctx, body)
	return d.finish(ctx, msg, "Callback query reply", componentCallbackReply, "answerCallbackQuery",
		code, respBody, err, map[string]any{
			"callback_query_id": msg.TransportMetadata.CallbackQueryID,
		})
}

// finish validates the response and publishes exactly one ack or nack, plus
// one status event. extra is merged into failure details to echo the relevant
// query id back to operators.
func (d *deliverer) finish(ctx context.Context, msg *message.Outbound, opContext, component, method string, code int, body []byte, callErr error, extra map[string]any) error {
	if callErr != nil {
		d.metrics.IncOutbound(method, "request_failed")
		d.nack(ctx, msg, opContext+" not sent: "+callErr.Error())
		details := map[string]any{"error": callErr.Error()}
		for k, v := range extra {
			details[k] = v
		}
		d.status.down(ctx, component, "request_failed", opContext+" request failed", details)
		return nil
	}

	res := Validate(code, body)
	if res.OK() {
		d.metrics.IncOutbound(method, "ok")
		if err := d.sink.PublishAck(ctx, &message.Ack{
			UserMessageID: msg.MessageID,
			SentMessageID: msg.MessageID,
		}); err != nil {
			d.logger.Warn("failed to publish ack", "message_id", msg.MessageID, "error", err)
		}
		d.status.ok(ctx, component, "good_outbound_request", opContext+" sent", nil)
		return nil
	}

	d.metrics.IncOutbound(method, res.StatusType())
	d.nack(ctx, msg, opContext+" not sent: "+res.Reason())

	details := res.Details()
	for k, v := range extra {
		details[k] = v
	}
	d.status.down(ctx, component, res.StatusType(), opContext+" not sent", details)
	return nil
}

func (d *deliverer) nack(ctx context.Context, msg *message.Outbound, reason string) {
	if err := d.sink.PublishNack(ctx, &message.Nack{
		UserMessageID: msg.MessageID,
		Reason:        reason,
	}); err != nil {
		d.logger.Warn("failed to publish nack", "message_id", msg.MessageID, "error", err)
	}
}
