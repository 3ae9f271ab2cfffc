package telegram

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/busgrid/tgbridge/pkg/message"
)

func TestRenderSendMessagePlain(t *testing.T) {
	msg := &message.Outbound{
		MessageID: "m1",
		Content:   "hello",
		ToAddr:    "42",
	}

	req := renderSendMessage(msg)
	if req.ChatID != "42" {
		t.Errorf("ChatID = %q, want 42", req.ChatID)
	}
	if req.Text != "hello" {
		t.Errorf("Text = %q, want hello", req.Text)
	}
	if req.ReplyToMessageID != 0 {
		t.Errorf("ReplyToMessageID = %d, want unset for non-replies", req.ReplyToMessageID)
	}
}

func TestRenderSendMessageReply(t *testing.T) {
	msg := &message.Outbound{
		MessageID:         "m2",
		Content:           "pong",
		ToAddr:            "42",
		InReplyTo:         "original-id",
		TransportMetadata: message.TransportMetadata{TelegramMsgID: 5},
	}

	req := renderSendMessage(msg)
	if req.ReplyToMessageID != 5 {
		t.Errorf("ReplyToMessageID = %d, want 5", req.ReplyToMessageID)
	}
}

func TestRenderSendMessageNoReplyWithoutInReplyTo(t *testing.T) {
	// telegram_msg_id alone must not trigger reply targeting.
	msg := &message.Outbound{
		MessageID:         "m3",
		Content:           "new thread",
		ToAddr:            "42",
		TransportMetadata: message.TransportMetadata{TelegramMsgID: 5},
	}

	req := renderSendMessage(msg)
	if req.ReplyToMessageID != 0 {
		t.Errorf("ReplyToMessageID = %d, want 0 when in_reply_to is unset", req.ReplyToMessageID)
	}
}

func TestRenderSendMessageMergesHints(t *testing.T) {
	msg := &message.Outbound{
		MessageID: "m4",
		Content:   "formatted",
		ToAddr:    "42",
		HelperMetadata: message.HelperMetadata{Telegram: &message.TelegramHints{
			ParseMode:             "Markdown",
			DisableWebPagePreview: true,
			DisableNotification:   true,
		}},
	}

	req := renderSendMessage(msg)
	if req.ParseMode != "Markdown" {
		t.Errorf("ParseMode = %q, want Markdown", req.ParseMode)
	}
	if !req.DisableWebPagePreview || !req.DisableNotification {
		t.Error("hint flags should be merged into the request")
	}
}

func TestRenderAnswerInlineQuery(t *testing.T) {
	msg := &message.Outbound{
		MessageID:         "m5",
		TransportMetadata: message.TransportMetadata{Type: message.PayloadInlineQuery, InlineQueryID: "q-1"},
		HelperMetadata: message.HelperMetadata{Telegram: &message.TelegramHints{
			Results: []json.RawMessage{json.RawMessage(`{"type":"article","id":"1"}`)},
		}},
	}

	req, err := renderAnswerInlineQuery(msg)
	if err != nil {
		t.Fatalf("renderAnswerInlineQuery() error: %v", err)
	}
	if req.InlineQueryID != "q-1" {
		t.Errorf("InlineQueryID = %q, want q-1", req.InlineQueryID)
	}
	if len(req.Results) != 1 {
		t.Errorf("Results length = %d, want 1", len(req.Results))
	}
}

func TestRenderAnswerInlineQueryMissingResults(t *testing.T) {
	msg := &message.Outbound{
		MessageID:         "m6",
		TransportMetadata: message.TransportMetadata{Type: message.PayloadInlineQuery, InlineQueryID: "q-2"},
	}

	_, err := renderAnswerInlineQuery(msg)
	if !errors.Is(err, errMissingResults) {
		t.Fatalf("error = %v, want errMissingResults", err)
	}
}

func TestRenderAnswerCallbackQuery(t *testing.T) {
	msg := &message.Outbound{
		MessageID:         "m7",
		Content:           "done!",
		TransportMetadata: message.TransportMetadata{Type: message.PayloadCallbackQuery, CallbackQueryID: "cb-1"},
		HelperMetadata: message.HelperMetadata{Telegram: &message.TelegramHints{
			Details: map[string]any{"show_alert": true},
		}},
	}

	body := renderAnswerCallbackQuery(msg)
	if body["callback_query_id"] != "cb-1" {
		t.Errorf("callback_query_id = %v, want cb-1", body["callback_query_id"])
	}
	if body["text"] != "done!" {
		t.Errorf("text = %v, want done!", body["text"])
	}
	if body["show_alert"] != true {
		t.Errorf("show_alert = %v, want true (merged from details)", body["show_alert"])
	}
}

func TestRenderAnswerCallbackQueryReservedKeysWin(t *testing.T) {
	msg := &message.Outbound{
		MessageID:         "m8",
		Content:           "real text",
		TransportMetadata: message.TransportMetadata{Type: message.PayloadCallbackQuery, CallbackQueryID: "cb-2"},
		HelperMetadata: message.HelperMetadata{Telegram: &message.TelegramHints{
			Details: map[string]any{"callback_query_id": "spoofed", "text": "spoofed"},
		}},
	}

	body := renderAnswerCallbackQuery(msg)
	if body["callback_query_id"] != "cb-2" {
		t.Errorf("callback_query_id = %v, reserved key must win", body["callback_query_id"])
	}
	if body["text"] != "real text" {
		t.Errorf("text = %v, reserved key must win", body["text"])
	}
}
