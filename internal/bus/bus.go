// Package bus defines the interfaces a transport uses to exchange canonical
// messages and events with the host message bus. Implementations live under
// modules/bus.
package bus

import (
	"context"

	"github.com/busgrid/tgbridge/pkg/message"
)

// Sink publishes transport output to the bus. All methods are safe for
// concurrent use.
type Sink interface {
	// PublishInbound hands a received message to the bus.
	PublishInbound(ctx context.Context, msg *message.Inbound) error

	// PublishAck reports successful delivery of an outbound message.
	PublishAck(ctx context.Context, ack *message.Ack) error

	// PublishNack reports failed delivery of an outbound message.
	PublishNack(ctx context.Context, nack *message.Nack) error

	// PublishStatus emits a component health-status event.
	PublishStatus(ctx context.Context, ev *message.StatusEvent) error
}

// OutboundHandler consumes one outbound message. Delivery outcome is reported
// through the Sink; the returned error covers handler-internal failures only.
type OutboundHandler func(ctx context.Context, msg *message.Outbound) error

// Source delivers bus-originated outbound messages to a transport.
type Source interface {
	// RegisterHandler attaches the consumer for outbound messages. At most
	// one handler is active at a time; registering again replaces it.
	RegisterHandler(h OutboundHandler)
}
