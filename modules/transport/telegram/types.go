package telegram

import "fmt"

// UpdateKind identifies which payload variant an Update carries. Variants are
// mutually exclusive; the kind is decided once at ingestion and dispatched on
// exhaustively.
type UpdateKind int

const (
	KindUnrecognized UpdateKind = iota
	KindMessage
	KindInlineQuery
	KindCallbackQuery
)

// Update represents an incoming update from the Telegram Bot API.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	InlineQuery   *InlineQuery   `json:"inline_query,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Kind classifies the update's payload. Callback queries win over inline
// queries, which win over messages; an update with none of them is
// unrecognized and gets dropped.
func (u *Update) Kind() UpdateKind {
	switch {
	case u.CallbackQuery != nil:
		return KindCallbackQuery
	case u.InlineQuery != nil:
		return KindInlineQuery
	case u.Message != nil:
		return KindMessage
	default:
		return KindUnrecognized
	}
}

// Message represents a Telegram message. Channel posts have no From user.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// InlineQuery represents a query typed by a user addressed to the bot via
// @botname in a chat input field.
type InlineQuery struct {
	ID     string `json:"id"`
	From   *User  `json:"from,omitempty"`
	Query  string `json:"query"`
	Offset string `json:"offset,omitempty"`
}

// CallbackQuery represents a button tap on an inline keyboard. Data may be
// empty.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// User represents a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// APIResponse is the generic wrapper returned by the Telegram Bot API.
type APIResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// APIError represents an error returned by the Telegram Bot API.
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}
