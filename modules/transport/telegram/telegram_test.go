package telegram

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/busgrid/tgbridge/internal/core"
	"github.com/busgrid/tgbridge/internal/gateway"
	"github.com/busgrid/tgbridge/pkg/message"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

func TestConfigureAppliesDefaults(t *testing.T) {
	raw := `
bot_username: "@bridgebot"
bot_token: "123456:ABC-def"
inbound_url: "https://bridge.example.com/webhooks/telegram"
`
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatal(err)
	}

	tr := &Transport{}
	if err := tr.Configure(&node); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if tr.config.OutboundURL != "https://api.telegram.org/bot" {
		t.Errorf("OutboundURL = %q, want the Bot API default", tr.config.OutboundURL)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func setWebhookTransport(sink *fakeSink, client *Client) *Transport {
	logger := discardLogger()
	return &Transport{
		config: Config{
			BotUsername: "@bridgebot",
			BotToken:    "123456:ABC-def",
			InboundURL:  "https://bridge.example.com/webhooks/telegram",
		},
		client:   client,
		logger:   logger,
		reporter: &statusReporter{sink: sink, logger: logger},
	}
}

func TestSetWebhookSuccess(t *testing.T) {
	client, requests := apiServer(t, 200, `{"ok":true,"result":true}`)
	sink := &fakeSink{}
	tr := setWebhookTransport(sink, client)

	tr.setWebhook(context.TODO())

	if _, ok := requests["setWebhook"]; !ok {
		t.Fatal("setWebhook was never called")
	}
	st := sink.lastStatus()
	if st == nil || st.Type != "good_webhook" || st.Component != "telegram_webhook" {
		t.Errorf("status = %+v, want ok good_webhook on telegram_webhook", st)
	}
	if st.Details["webhook_url"] != "https://bridge.example.com/webhooks/telegram" {
		t.Errorf("details webhook_url = %v, want the registered URL", st.Details["webhook_url"])
	}
}

func TestSetWebhookRejected(t *testing.T) {
	client, _ := apiServer(t, 400, `{"ok":false,"description":"bad webhook: HTTPS url must be provided"}`)
	sink := &fakeSink{}
	tr := setWebhookTransport(sink, client)

	tr.setWebhook(context.TODO())

	st := sink.lastStatus()
	if st == nil || st.Type != "bad_response" || st.Component != "telegram_webhook" {
		t.Errorf("status = %+v, want down bad_response on telegram_webhook", st)
	}
}

func TestSetWebhookRequestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := &fakeSink{}
	tr := setWebhookTransport(sink, NewClient("123456:ABC-def", url+"/bot"))

	tr.setWebhook(context.TODO())

	st := sink.lastStatus()
	if st == nil || st.Type != "request_failed" {
		t.Errorf("status = %+v, want down request_failed", st)
	}
}

// TestStartEmitsStartingDown runs the full Start sequence against a fake Bot
// API and checks the boot marker: the first status event is a down "starting"
// on telegram_setup, followed by the webhook registration outcome.
func TestStartEmitsStartingDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":7,"username":"bridgebot","is_bot":true}}`)
	}))
	defer srv.Close()

	sink := &fakeSink{}
	appCtx := core.NewAppContext(discardLogger(), t.TempDir())
	appCtx.RegisterService("bus.sink", sink)
	appCtx.RegisterService("bus.source", &fakeSource{})
	appCtx.RegisterService("dedup.store", newFakeStore())
	appCtx.RegisterService("gateway.webhook_dispatcher",
		gateway.NewWebhookDispatcher(discardLogger(), gateway.NewMetrics(), 1<<20))

	tr := &Transport{config: Config{
		BotUsername: "@bridgebot",
		BotToken:    "123456:ABC-def",
		OutboundURL: srv.URL + "/bot",
		InboundURL:  "https://bridge.example.com/webhooks/telegram",
	}}
	if err := tr.Provision(appCtx); err != nil {
		t.Fatalf("Provision() error: %v", err)
	}
	if err := tr.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if len(sink.statuses) == 0 {
		t.Fatal("no status events published during Start")
	}
	first := sink.statuses[0]
	if first.Component != "telegram_setup" || first.Type != "starting" {
		t.Fatalf("first status = %+v, want starting on telegram_setup", first)
	}
	if first.Status != message.StatusDown {
		t.Errorf("starting status = %q, want down (transport is not serving yet)", first.Status)
	}

	last := sink.lastStatus()
	if last.Type != "good_webhook" || last.Status != message.StatusOK {
		t.Errorf("final status = %+v, want ok good_webhook", last)
	}
}

// TestGatewayDispatchEndToEnd drives the full inbound path: HTTP POST through
// the gateway dispatcher into the receiver and out onto the bus.
func TestGatewayDispatchEndToEnd(t *testing.T) {
	sink := &fakeSink{}
	receiver := newTestReceiver(sink, newFakeStore(), "")

	dispatcher := gateway.NewWebhookDispatcher(discardLogger(), gateway.NewMetrics(), 1<<20)
	dispatcher.Register("telegram", receiver)

	router := chi.NewRouter()
	router.Post("/webhooks/{source}", dispatcher.ServeHTTP)
	srv := httptest.NewServer(router)
	defer srv.Close()

	body := []byte(`{"update_id": 1, "message": {"message_id": 5, "from": {"id": 42}, "chat": {"id": 42}, "text": "hi"}}`)
	resp, err := http.Post(srv.URL+"/webhooks/telegram", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(sink.inbounds) != 1 {
		t.Fatalf("published %d messages, want 1", len(sink.inbounds))
	}
	got := sink.inbounds[0]
	if got.Content != "hi" || got.FromAddr != "42" || got.ToAddr != "@bot" {
		t.Errorf("inbound = %+v, want content hi from 42 to @bot", got)
	}
}

// TestGatewayDispatchBadPayload checks the one 400 path end to end.
func TestGatewayDispatchBadPayload(t *testing.T) {
	sink := &fakeSink{}
	receiver := newTestReceiver(sink, newFakeStore(), "")

	dispatcher := gateway.NewWebhookDispatcher(discardLogger(), gateway.NewMetrics(), 1<<20)
	dispatcher.Register("telegram", receiver)

	router := chi.NewRouter()
	router.Post("/webhooks/{source}", dispatcher.ServeHTTP)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhooks/telegram", "application/json", bytes.NewReader([]byte(`{broken`)))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400 for an unparseable body", resp.StatusCode)
	}
	if len(sink.inbounds) != 0 {
		t.Errorf("published %d messages, want 0", len(sink.inbounds))
	}
}
