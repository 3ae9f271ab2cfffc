package telegram

import (
	"fmt"
	"net/url"
	"regexp"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// webhookPorts are the ports Telegram accepts for webhook URLs.
var webhookPorts = map[string]bool{"80": true, "88": true, "443": true, "8443": true}

// Config holds the Telegram transport configuration.
type Config struct {
	// BotUsername is the bot's @username, used as to_addr on inbound messages.
	BotUsername string `yaml:"bot_username"`

	// BotToken is the Bot API token. Secret.
	BotToken string `yaml:"bot_token"`

	// OutboundURL is the Bot API prefix up to and excluding the token.
	OutboundURL string `yaml:"outbound_url"`

	// InboundURL is this transport's externally reachable webhook URL,
	// registered with Telegram via setWebhook at startup.
	InboundURL string `yaml:"inbound_url"`

	// WebhookSecret, when set, is sent to Telegram on setWebhook and checked
	// on every inbound request.
	WebhookSecret string `yaml:"webhook_secret"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.OutboundURL == "" {
		c.OutboundURL = "https://api.telegram.org/bot"
	}
}

// validate checks configuration constraints. Called after defaults.
func (c *Config) validate() error {
	if c.BotUsername == "" {
		return fmt.Errorf("telegram: bot_username is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if !tokenPattern.MatchString(c.BotToken) {
		return fmt.Errorf("telegram: bot_token format invalid (expected <bot_id>:<hash>)")
	}

	u, err := url.Parse(c.OutboundURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("telegram: outbound_url must be a valid http/https URL, got %q", c.OutboundURL)
	}

	if c.InboundURL == "" {
		return fmt.Errorf("telegram: inbound_url is required")
	}
	in, err := url.Parse(c.InboundURL)
	if err != nil || in.Scheme != "https" {
		return fmt.Errorf("telegram: inbound_url must be an https URL, got %q", c.InboundURL)
	}
	port := in.Port()
	if port == "" {
		port = "443"
	}
	if !webhookPorts[port] {
		return fmt.Errorf("telegram: inbound_url port must be one of 80, 88, 443, 8443, got %s", port)
	}

	return nil
}
