package message

import "time"

// Inbound is the canonical representation of a message received from a
// platform, published to the bus exactly once per logical update. The bus
// owns it after publish; transports never mutate it afterwards.
type Inbound struct {
	// MessageID is a locally generated opaque identifier.
	MessageID string `json:"message_id"`

	// Content is the text carried by the update: message text, inline query
	// text, or callback data. May be empty for callback queries without data.
	Content string `json:"content,omitempty"`

	FromAddr     string   `json:"from_addr"`
	FromAddrType AddrType `json:"from_addr_type"`
	ToAddr       string   `json:"to_addr"`
	ToAddrType   AddrType `json:"to_addr_type"`

	TransportType string    `json:"transport_type"`
	Timestamp     time.Time `json:"timestamp"`

	TransportMetadata TransportMetadata `json:"transport_metadata"`
	HelperMetadata    HelperMetadata    `json:"helper_metadata,omitempty"`
}

// IsReplyable reports whether the message carries enough transport metadata
// for a reply to be routed back to its origin.
func (m *Inbound) IsReplyable() bool {
	switch m.TransportMetadata.Type {
	case PayloadInlineQuery:
		return m.TransportMetadata.InlineQueryID != ""
	case PayloadCallbackQuery:
		return m.TransportMetadata.CallbackQueryID != ""
	default:
		return m.FromAddr != ""
	}
}
