package telegram

import (
	"errors"

	"github.com/busgrid/tgbridge/pkg/message"
)

// errMissingResults marks an inline-query reply without pre-built results.
// It is a local validation failure: no HTTP call is made.
var errMissingResults = errors.New("helper_metadata is missing results")

// renderSendMessage builds the sendMessage body for a plain or reply message.
// The reply target is set only when the bus marked the message as a reply and
// the original Telegram message id round-tripped through transport metadata.
func renderSendMessage(msg *message.Outbound) SendMessageRequest {
	req := SendMessageRequest{
		ChatID: msg.ToAddr,
		Text:   msg.Content,
	}
	if msg.InReplyTo != "" && msg.TransportMetadata.TelegramMsgID != 0 {
		req.ReplyToMessageID = msg.TransportMetadata.TelegramMsgID
	}

	hints := msg.Hints()
	req.ParseMode = hints.ParseMode
	req.DisableWebPagePreview = hints.DisableWebPagePreview
	req.DisableNotification = hints.DisableNotification
	return req
}

// renderAnswerInlineQuery builds the answerInlineQuery body. Results must be
// supplied by the producing application; this transport cannot invent them.
func renderAnswerInlineQuery(msg *message.Outbound) (AnswerInlineQueryRequest, error) {
	results := msg.Hints().Results
	if len(results) == 0 {
		return AnswerInlineQueryRequest{}, errMissingResults
	}
	return AnswerInlineQueryRequest{
		InlineQueryID: msg.TransportMetadata.InlineQueryID,
		Results:       results,
	}, nil
}

// renderAnswerCallbackQuery builds the answerCallbackQuery body. Extra fields
// from helper details (e.g. show_alert) are merged in; the reserved keys win.
func renderAnswerCallbackQuery(msg *message.Outbound) map[string]any {
	body := make(map[string]any)
	for k, v := range msg.Hints().Details {
		body[k] = v
	}
	body["callback_query_id"] = msg.TransportMetadata.CallbackQueryID
	if msg.Content != "" {
		body["text"] = msg.Content
	}
	return body
}
