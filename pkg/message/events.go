package message

// Ack is a positive delivery acknowledgement for an outbound message.
type Ack struct {
	UserMessageID string `json:"user_message_id"`
	SentMessageID string `json:"sent_message_id"`
}

// Nack is a negative delivery acknowledgement carrying a composed,
// human-readable reason.
type Nack struct {
	UserMessageID string `json:"user_message_id"`
	Reason        string `json:"nack_reason"`
}

// Health is the binary health state carried by a status event.
type Health string

const (
	StatusOK   Health = "ok"
	StatusDown Health = "down"
)

// StatusEvent is a structured health-status event published by a transport
// component, independent of message-level acks and nacks.
type StatusEvent struct {
	Status    Health         `json:"status"`
	Component string         `json:"component"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
