package membus

import (
	"context"
	"errors"
	"sync"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/pkg/message"
)

// ErrClosed is returned by publish calls after the bus has shut down.
var ErrClosed = errors.New("membus: bus is closed")

// subscriber is a named tap on a stream. Multiple subscribers independently
// consume the same published values (fan-out).
type subscriber struct {
	name string
	ch   chan any
}

// Bus is an in-process message bus. Inbound messages flow to a primary
// consumer channel plus any taps; acks, nacks and status events flow to event
// taps; outbound messages are pumped to the registered transport handler.
type Bus struct {
	inbound  chan *message.Inbound
	outbound chan *message.Outbound

	mu        sync.RWMutex
	handler   bus.OutboundHandler
	closed    bool
	closeOnce sync.Once

	inboundSubs []*subscriber
	eventSubs   []*subscriber

	tapSize int
}

// NewBus creates a bus with the given primary queue and tap buffer sizes.
func NewBus(queueSize, tapSize int) *Bus {
	return &Bus{
		inbound:  make(chan *message.Inbound, queueSize),
		outbound: make(chan *message.Outbound, queueSize),
		tapSize:  tapSize,
	}
}

// SubscribeInbound creates a named tap receiving every published inbound
// message. The channel is buffered; slow consumers drop.
func (b *Bus) SubscribeInbound(name string) <-chan any {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &subscriber{name: name, ch: make(chan any, b.tapSize)}
	b.inboundSubs = append(b.inboundSubs, sub)
	return sub.ch
}

// SubscribeEvents creates a named tap receiving every ack, nack and status
// event as *message.Ack, *message.Nack or *message.StatusEvent.
func (b *Bus) SubscribeEvents(name string) <-chan any {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &subscriber{name: name, ch: make(chan any, b.tapSize)}
	b.eventSubs = append(b.eventSubs, sub)
	return sub.ch
}

// PublishInbound implements bus.Sink. The lock is held across the channel
// sends so a concurrent Close cannot close the queue mid-publish; sends are
// non-blocking, so holding it is cheap.
func (b *Bus) PublishInbound(_ context.Context, msg *message.Inbound) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, sub := range b.inboundSubs {
		select {
		case sub.ch <- msg:
		default: // drop if slow
		}
	}

	select {
	case b.inbound <- msg:
	default:
		// Queue full. Drop oldest and retry.
		select {
		case <-b.inbound:
		default:
		}
		select {
		case b.inbound <- msg:
		default:
		}
	}
	return nil
}

// PublishAck implements bus.Sink.
func (b *Bus) PublishAck(_ context.Context, ack *message.Ack) error {
	return b.publishEvent(ack)
}

// PublishNack implements bus.Sink.
func (b *Bus) PublishNack(_ context.Context, nack *message.Nack) error {
	return b.publishEvent(nack)
}

// PublishStatus implements bus.Sink.
func (b *Bus) PublishStatus(_ context.Context, ev *message.StatusEvent) error {
	return b.publishEvent(ev)
}

func (b *Bus) publishEvent(ev any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, sub := range b.eventSubs {
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

// ConsumeInbound blocks until an inbound message is available or ctx is done.
func (b *Bus) ConsumeInbound(ctx context.Context) (*message.Inbound, bool) {
	select {
	case msg, ok := <-b.inbound:
		return msg, ok && msg != nil
	case <-ctx.Done():
		return nil, false
	}
}

// RegisterHandler implements bus.Source.
func (b *Bus) RegisterHandler(h bus.OutboundHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// SendOutbound enqueues an outbound message for delivery by the registered
// handler. Drop-oldest under pressure, same as inbound. As with
// PublishInbound, the lock spans the channel sends to exclude Close.
func (b *Bus) SendOutbound(msg *message.Outbound) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	select {
	case b.outbound <- msg:
	default:
		select {
		case <-b.outbound:
		default:
		}
		select {
		case b.outbound <- msg:
		default:
		}
	}
	return nil
}

// pump delivers outbound messages to the registered handler until ctx is done
// or the bus is closed.
func (b *Bus) pump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-b.outbound:
			if !ok || msg == nil {
				return
			}
			b.mu.RLock()
			h := b.handler
			b.mu.RUnlock()
			if h != nil {
				_ = h(ctx, msg)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close shuts the bus down. Subsequent publishes return ErrClosed. The queue
// channels are closed under the write lock, which publishers hold for reading
// while they send; a publish and a close can therefore never interleave.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		for _, sub := range b.inboundSubs {
			close(sub.ch)
		}
		for _, sub := range b.eventSubs {
			close(sub.ch)
		}
		close(b.inbound)
		close(b.outbound)
	})
}
