package telegram

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/pkg/message"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSink records everything published to it.
type fakeSink struct {
	mu       sync.Mutex
	inbounds []*message.Inbound
	acks     []*message.Ack
	nacks    []*message.Nack
	statuses []*message.StatusEvent

	publishErr error
}

func (s *fakeSink) PublishInbound(_ context.Context, msg *message.Inbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.inbounds = append(s.inbounds, msg)
	return nil
}

func (s *fakeSink) PublishAck(_ context.Context, ack *message.Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks = append(s.acks, ack)
	return nil
}

func (s *fakeSink) PublishNack(_ context.Context, nack *message.Nack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nacks = append(s.nacks, nack)
	return nil
}

func (s *fakeSink) PublishStatus(_ context.Context, ev *message.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, ev)
	return nil
}

// lastStatus returns the most recent status event, or nil.
func (s *fakeSink) lastStatus() *message.StatusEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return nil
	}
	return s.statuses[len(s.statuses)-1]
}

// fakeStore is a map-backed dedup store.
type fakeStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[string]bool)}
}

func (s *fakeStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[id], nil
}

func (s *fakeStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = true
	return nil
}

// fakeSource records the registered outbound handler.
type fakeSource struct {
	mu      sync.Mutex
	handler bus.OutboundHandler
}

func (s *fakeSource) RegisterHandler(h bus.OutboundHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func newTestReceiver(sink *fakeSink, store *fakeStore, secret string) *WebhookReceiver {
	logger := discardLogger()
	return NewWebhookReceiver(
		sink, store,
		&statusReporter{sink: sink, logger: logger},
		logger, nil, "@bot", secret,
	)
}

func newTestDeliverer(sink *fakeSink, client *Client) *deliverer {
	logger := discardLogger()
	return &deliverer{
		client: client,
		sink:   sink,
		status: &statusReporter{sink: sink, logger: logger},
		logger: logger,
	}
}
