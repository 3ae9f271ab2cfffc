package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes prevents unbounded reads from API responses.
const maxResponseBytes = 10 << 20 // 10 MiB

// Client is a thin HTTP wrapper around the Telegram Bot API. It never follows
// redirects: Telegram answers a malformed bot token in the API path with a
// 302, and following it would mask the failure as a misleading 200. Responses
// are returned raw for the validator to classify. There is no retry logic;
// delivery failures surface once as nacks.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Telegram Bot API client. baseURL is the bot API
// prefix up to and excluding the token, e.g. "https://api.telegram.org/bot".
func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// post sends a JSON POST request to the given Bot API method and returns the
// raw status code and body for validation.
func (c *Client) post(ctx context.Context, method string, payload any) (int, []byte, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Wrap without the raw error text in the message to avoid leaking the
		// token-bearing URL. The original error is still available via Unwrap.
		return 0, nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return 0, nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	return resp.StatusCode, respBody, nil
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
	ReplyToMessageID      int64  `json:"reply_to_message_id,omitempty"`
}

// AnswerInlineQueryRequest is the request body for the answerInlineQuery method.
type AnswerInlineQueryRequest struct {
	InlineQueryID string            `json:"inline_query_id"`
	Results       []json.RawMessage `json:"results"`
}

// SetWebhookRequest is the request body for the setWebhook method.
type SetWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

// SendMessage sends a text message. The raw response goes to the validator.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (int, []byte, error) {
	return c.post(ctx, "sendMessage", req)
}

// AnswerInlineQuery answers an inline query with pre-built results.
func (c *Client) AnswerInlineQuery(ctx context.Context, req AnswerInlineQueryRequest) (int, []byte, error) {
	return c.post(ctx, "answerInlineQuery", req)
}

// AnswerCallbackQuery answers a callback query. The body is an open map so
// helper-supplied extras (e.g. show_alert) ride along.
func (c *Client) AnswerCallbackQuery(ctx context.Context, body map[string]any) (int, []byte, error) {
	return c.post(ctx, "answerCallbackQuery", body)
}

// SetWebhook registers the webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, req SetWebhookRequest) (int, []byte, error) {
	return c.post(ctx, "setWebhook", req)
}

// DeleteWebhook removes the current webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context) (int, []byte, error) {
	return c.post(ctx, "deleteWebhook", nil)
}

// GetMe returns the bot's user information, or an *APIError on rejection.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	code, body, err := c.post(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}

	var resp APIResponse[User]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("telegram: decode getMe response (status %d): %w", code, err)
	}
	if !resp.OK {
		return nil, &APIError{Code: resp.ErrorCode, Description: resp.Description}
	}
	return &resp.Result, nil
}
