package telegram

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ResultKind tags a ValidationResult variant.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultRedirected
	ResultMalformedBody
	ResultAPIError
)

// ValidationResult classifies one raw Telegram HTTP response. It is produced
// per outbound call and consumed immediately; never persisted.
type ValidationResult struct {
	Kind        ResultKind
	Code        int
	RawBody     []byte
	ParseErr    error
	Description string
}

// Validate classifies a raw response. The redirect check precedes body
// parsing: a redirect's body is irrelevant and may not be JSON. Telegram
// answers a malformed bot token in the API path with a 302.
func Validate(code int, body []byte) ValidationResult {
	if code == http.StatusFound {
		return ValidationResult{Kind: ResultRedirected, Code: code}
	}

	var resp APIResponse[json.RawMessage]
	if err := json.Unmarshal(body, &resp); err != nil {
		return ValidationResult{Kind: ResultMalformedBody, Code: code, RawBody: body, ParseErr: err}
	}

	if code == http.StatusOK && resp.OK {
		return ValidationResult{Kind: ResultSuccess, Code: code}
	}

	return ValidationResult{Kind: ResultAPIError, Code: code, Description: resp.Description}
}

// OK reports whether the response was a success.
func (r ValidationResult) OK() bool {
	return r.Kind == ResultSuccess
}

// StatusType returns the health-status event type for this result.
func (r ValidationResult) StatusType() string {
	switch r.Kind {
	case ResultSuccess:
		return "good_outbound_request"
	case ResultRedirected:
		return "request_redirected"
	case ResultMalformedBody:
		return "unexpected_response_format"
	default:
		return "bad_response"
	}
}

// Reason returns the human-readable failure cause used in composed nack
// reasons. Empty for success.
func (r ValidationResult) Reason() string {
	switch r.Kind {
	case ResultSuccess:
		return ""
	case ResultRedirected:
		return fmt.Sprintf("request redirected (code %d)", r.Code)
	case ResultMalformedBody:
		return fmt.Sprintf("unexpected response format: %v", r.ParseErr)
	default:
		return r.Description
	}
}

// Details returns the structured cause carried in a down status event.
func (r ValidationResult) Details() map[string]any {
	switch r.Kind {
	case ResultSuccess:
		return nil
	case ResultRedirected:
		return map[string]any{"res_code": r.Code}
	case ResultMalformedBody:
		return map[string]any{
			"error":    fmt.Sprint(r.ParseErr),
			"res_code": r.Code,
			"res_body": string(r.RawBody),
		}
	default:
		return map[string]any{
			"error":    r.Description,
			"res_code": r.Code,
		}
	}
}
