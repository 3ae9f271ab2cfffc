// Package message defines the canonical, bus-facing data contract between
// transports and the host message bus. It is independent of any platform's
// wire format.
package message

import (
	"encoding/json"

	"github.com/google/uuid"
)

// AddrType classifies an address field.
type AddrType string

const (
	// AddrUserID marks an address holding a platform user or chat identifier.
	AddrUserID AddrType = "user_id"
	// AddrUsername marks an address holding a platform username.
	AddrUsername AddrType = "username"
)

// PayloadKind discriminates the transport-specific payload variant carried in
// TransportMetadata. The zero value means a plain text message.
type PayloadKind string

const (
	PayloadPlain         PayloadKind = ""
	PayloadInlineQuery   PayloadKind = "inline_query"
	PayloadCallbackQuery PayloadKind = "callback_query"
)

// TransportMetadata carries transport-level routing data that must round-trip
// between an inbound message and its reply.
type TransportMetadata struct {
	// Type selects the payload variant. Empty means plain text.
	Type PayloadKind `json:"type,omitempty"`

	// TelegramMsgID is the platform message id of the original inbound
	// message, used for reply targeting.
	TelegramMsgID int64 `json:"telegram_msg_id,omitempty"`

	// InlineQueryID identifies the inline query a reply answers.
	InlineQueryID string `json:"inline_query_id,omitempty"`

	// CallbackQueryID identifies the callback query a reply answers.
	CallbackQueryID string `json:"callback_query_id,omitempty"`
}

// HelperMetadata carries optional, display-oriented metadata. Unlike
// TransportMetadata it is advisory: transports must not depend on it for
// correctness.
type HelperMetadata struct {
	Telegram *TelegramHints `json:"telegram,omitempty"`
}

// TelegramHints holds Telegram-specific echo data (inbound) and delivery
// overrides (outbound).
type TelegramHints struct {
	// Username is the sender's display username, echoed inbound when known.
	Username string `json:"username,omitempty"`

	// ParseMode, DisableWebPagePreview and DisableNotification are merged
	// into outbound sendMessage calls.
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`

	// Results holds the pre-built result objects for an inline-query answer.
	// Required when replying to an inline query.
	Results []json.RawMessage `json:"results,omitempty"`

	// Details carries extra fields merged into answerCallbackQuery calls
	// (e.g. show_alert).
	Details map[string]any `json:"details,omitempty"`
}

// NewID returns a fresh opaque message identifier.
func NewID() string {
	return uuid.NewString()
}
