package telegram

import (
	"strconv"
	"time"

	"github.com/busgrid/tgbridge/pkg/message"
)

// transportType identifies this transport in canonical messages.
const transportType = "telegram"

// translateMessage converts a Telegram text message into a canonical inbound
// message. from_addr resolves to the sender's id when From is present, else
// to the chat id (channel posts carry no originating user).
func translateMessage(msg *Message, botUsername string) *message.Inbound {
	fromAddr := strconv.FormatInt(msg.Chat.ID, 10)
	username := ""
	if msg.From != nil {
		fromAddr = strconv.FormatInt(msg.From.ID, 10)
		username = msg.From.Username
	}

	out := &message.Inbound{
		MessageID:     message.NewID(),
		Content:       msg.Text,
		FromAddr:      fromAddr,
		FromAddrType:  message.AddrUserID,
		ToAddr:        botUsername,
		ToAddrType:    message.AddrUsername,
		TransportType: transportType,
		Timestamp:     messageTime(msg.Date),
		TransportMetadata: message.TransportMetadata{
			TelegramMsgID: msg.MessageID,
		},
	}
	attachUsername(out, username)
	return out
}

// translateInlineQuery converts an inline query. Content is the query text;
// the query id rides in transport metadata so a reply can be routed back.
func translateInlineQuery(q *InlineQuery, botUsername string) *message.Inbound {
	fromAddr := ""
	username := ""
	if q.From != nil {
		fromAddr = strconv.FormatInt(q.From.ID, 10)
		username = q.From.Username
	}

	out := &message.Inbound{
		MessageID:     message.NewID(),
		Content:       q.Query,
		FromAddr:      fromAddr,
		FromAddrType:  message.AddrUserID,
		ToAddr:        botUsername,
		ToAddrType:    message.AddrUsername,
		TransportType: transportType,
		Timestamp:     time.Now(),
		TransportMetadata: message.TransportMetadata{
			Type:          message.PayloadInlineQuery,
			InlineQueryID: q.ID,
		},
	}
	attachUsername(out, username)
	return out
}

// translateCallbackQuery converts a callback query. Content is the optional
// data payload and may be empty. The callback id must round-trip so the
// consuming application can answer it; Telegram shows a loading indicator
// until answerCallbackQuery is called.
func translateCallbackQuery(cb *CallbackQuery, botUsername string) *message.Inbound {
	fromAddr := ""
	username := ""
	if cb.From != nil {
		fromAddr = strconv.FormatInt(cb.From.ID, 10)
		username = cb.From.Username
	}

	out := &message.Inbound{
		MessageID:     message.NewID(),
		Content:       cb.Data,
		FromAddr:      fromAddr,
		FromAddrType:  message.AddrUserID,
		ToAddr:        botUsername,
		ToAddrType:    message.AddrUsername,
		TransportType: transportType,
		Timestamp:     time.Now(),
		TransportMetadata: message.TransportMetadata{
			Type:            message.PayloadCallbackQuery,
			CallbackQueryID: cb.ID,
		},
	}
	attachUsername(out, username)
	return out
}

// attachUsername echoes the sender's username into helper metadata when
// known. Absence means unknown, never an error.
func attachUsername(m *message.Inbound, username string) {
	if username == "" {
		return
	}
	m.HelperMetadata.Telegram = &message.TelegramHints{Username: username}
}

func messageTime(date int64) time.Time {
	if date == 0 {
		return time.Now()
	}
	return time.Unix(date, 0)
}
