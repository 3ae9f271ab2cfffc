package message

// Outbound is the canonical representation of a message the bus hands to a
// transport for delivery. It is consumed exactly once; transports surface
// delivery failures through a nack and never retry internally.
type Outbound struct {
	// MessageID is the bus-assigned identifier acked or nacked after delivery.
	MessageID string `json:"message_id"`

	// Content is the text to deliver.
	Content string `json:"content,omitempty"`

	// ToAddr is the destination address (chat or user identifier).
	ToAddr string `json:"to_addr"`

	// InReplyTo holds the original inbound message id when this message is a
	// direct reply. When set, TransportMetadata.TelegramMsgID carries the
	// platform-side reply target.
	InReplyTo string `json:"in_reply_to,omitempty"`

	TransportMetadata TransportMetadata `json:"transport_metadata"`
	HelperMetadata    HelperMetadata    `json:"helper_metadata,omitempty"`
}

// Kind returns the payload variant this message replies to.
func (m *Outbound) Kind() PayloadKind {
	return m.TransportMetadata.Type
}

// Hints returns the Telegram helper hints, never nil.
func (m *Outbound) Hints() *TelegramHints {
	if m.HelperMetadata.Telegram == nil {
		return &TelegramHints{}
	}
	return m.HelperMetadata.Telegram
}
