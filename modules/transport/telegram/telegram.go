// Package telegram implements the Telegram Bot API transport. It bridges
// webhook updates into canonical bus messages and canonical outbound messages
// into Bot API calls, surfacing delivery outcomes as acks, nacks, and
// structured status events.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/internal/core"
	"github.com/busgrid/tgbridge/internal/dedup"
	"github.com/busgrid/tgbridge/internal/gateway"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Transport{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Transport)(nil)
	_ core.Provisioner  = (*Transport)(nil)
	_ core.Validator    = (*Transport)(nil)
	_ core.Starter      = (*Transport)(nil)
	_ core.Stopper      = (*Transport)(nil)
)

// Transport is the Telegram transport module.
type Transport struct {
	config Config
	client *Client
	logger *slog.Logger
	appCtx *core.AppContext

	// Bound at Start() via the service registry.
	sink      bus.Sink
	source    bus.Source
	store     dedup.Store
	reporter  *statusReporter
	receiver  *WebhookReceiver
	deliverer *deliverer
	metrics   *transportMetrics
}

// ModuleInfo implements core.Module.
func (t *Transport) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "transport.telegram",
		New: func() core.Module { return &Transport{} },
	}
}

// Configure implements core.Configurable.
func (t *Transport) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Transport) Provision(ctx *core.AppContext) error {
	t.appCtx = ctx
	t.logger = ctx.Logger
	t.client = NewClient(t.config.BotToken, t.config.OutboundURL)
	return nil
}

// Validate implements core.Validator.
func (t *Transport) Validate() error {
	return t.config.validate()
}

// Start implements core.Starter. It binds bus, store, and gateway services,
// authenticates the bot, registers the webhook handler, and registers this
// transport's inbound URL with Telegram.
func (t *Transport) Start() error {
	if err := t.bindServices(); err != nil {
		return err
	}

	ctx := context.Background()
	// The transport is not serving traffic until webhook registration
	// completes, so the boot marker is a down status.
	t.reporter.down(ctx, componentSetup, "starting", "Telegram transport starting", nil)

	user, err := t.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.logger.Info("telegram bot authenticated", "id", user.ID, "username", user.Username)

	t.receiver = NewWebhookReceiver(
		t.sink, t.store, t.reporter, t.logger, t.metrics,
		t.config.BotUsername, t.config.WebhookSecret,
	)
	t.deliverer = &deliverer{
		client:  t.client,
		sink:    t.sink,
		status:  t.reporter,
		logger:  t.logger,
		metrics: t.metrics,
	}

	if err := t.registerWebhookHandler(); err != nil {
		return err
	}
	t.source.RegisterHandler(t.deliverer.HandleOutbound)

	// Register our inbound URL with Telegram. Failure is reported, not
	// fatal: the transport stays up but receives no inbound traffic until
	// restarted with corrected configuration.
	t.setWebhook(ctx)

	return nil
}

// bindServices resolves the transport's collaborators from the service
// registry.
func (t *Transport) bindServices() error {
	svc, ok := t.appCtx.GetService("bus.sink")
	if !ok {
		return errors.New("telegram: bus.sink service not found (is a bus module loaded?)")
	}
	sink, ok := svc.(bus.Sink)
	if !ok {
		return errors.New("telegram: bus.sink service is not a bus.Sink")
	}
	t.sink = sink

	svc, ok = t.appCtx.GetService("bus.source")
	if !ok {
		return errors.New("telegram: bus.source service not found (is a bus module loaded?)")
	}
	source, ok := svc.(bus.Source)
	if !ok {
		return errors.New("telegram: bus.source service is not a bus.Source")
	}
	t.source = source

	svc, ok = t.appCtx.GetService("dedup.store")
	if !ok {
		return errors.New("telegram: dedup.store service not found (is a store module loaded?)")
	}
	store, ok := svc.(dedup.Store)
	if !ok {
		return errors.New("telegram: dedup.store service is not a dedup.Store")
	}
	t.store = store

	// Metrics are optional; the transport runs without a gateway registry.
	if svc, ok := t.appCtx.GetService("gateway.metrics"); ok {
		if gm, ok := svc.(*gateway.Metrics); ok {
			t.metrics = newTransportMetrics(gm.Registry())
		}
	}

	t.reporter = &statusReporter{sink: t.sink, logger: t.logger}
	return nil
}

// registerWebhookHandler attaches the receiver to the gateway dispatcher
// under the "telegram" source.
func (t *Transport) registerWebhookHandler() error {
	svc, ok := t.appCtx.GetService("gateway.webhook_dispatcher")
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}
	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}
	dispatcher.Register("telegram", t.receiver)
	return nil
}

// setWebhook registers the inbound URL with Telegram and reports the outcome
// as a good_webhook or bad_webhook status. One-shot; never retried.
func (t *Transport) setWebhook(ctx context.Context) {
	if t.config.WebhookSecret == "" {
		t.logger.Warn("telegram webhook running without secret_token; " +
			"consider setting webhook_secret for production deployments")
	}

	code, body, err := t.client.SetWebhook(ctx, SetWebhookRequest{
		URL:         t.config.InboundURL,
		SecretToken: t.config.WebhookSecret,
	})
	if err != nil {
		t.logger.Error("setWebhook request failed", "error", err)
		t.reporter.down(ctx, componentWebhook, "request_failed",
			"Webhook registration request failed",
			map[string]any{"error": err.Error()})
		return
	}

	res := Validate(code, body)
	if res.OK() {
		t.logger.Info("telegram webhook configured", "url", t.config.InboundURL)
		t.reporter.ok(ctx, componentWebhook, "good_webhook", "Webhook set up",
			map[string]any{"webhook_url": t.config.InboundURL})
		return
	}

	t.logger.Error("setWebhook rejected", "type", res.StatusType(), "code", res.Code)
	t.reporter.down(ctx, componentWebhook, res.StatusType(),
		"Webhook setup failed: "+res.Reason(), res.Details())
}

// Stop implements core.Stopper. The webhook registration is removed so
// Telegram stops POSTing to an endpoint that no longer exists.
func (t *Transport) Stop(ctx context.Context) error {
	t.logger.Info("telegram transport stopping")
	if t.client != nil {
		if _, _, err := t.client.DeleteWebhook(ctx); err != nil {
			t.logger.Warn("failed to delete webhook on shutdown", "error", err)
		}
	}
	return nil
}
