package membus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/busgrid/tgbridge/pkg/message"
)

func TestPublishConsumeInbound(t *testing.T) {
	b := NewBus(10, 8)
	defer b.Close()

	in := &message.Inbound{MessageID: "m1", Content: "hi"}
	if err := b.PublishInbound(context.Background(), in); err != nil {
		t.Fatalf("PublishInbound() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("ConsumeInbound() returned no message")
	}
	if got.MessageID != "m1" {
		t.Errorf("MessageID = %q, want m1", got.MessageID)
	}
}

func TestInboundDropOldestUnderPressure(t *testing.T) {
	b := NewBus(2, 8)
	defer b.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := b.PublishInbound(ctx, &message.Inbound{MessageID: id}); err != nil {
			t.Fatal(err)
		}
	}

	tctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	got, ok := b.ConsumeInbound(tctx)
	if !ok {
		t.Fatal("ConsumeInbound() returned no message")
	}
	if got.MessageID != "b" {
		t.Errorf("first message = %q, want b (oldest dropped)", got.MessageID)
	}
}

func TestEventTapsReceiveAcksAndNacks(t *testing.T) {
	b := NewBus(10, 8)
	defer b.Close()

	events := b.SubscribeEvents("test")
	ctx := context.Background()

	if err := b.PublishAck(ctx, &message.Ack{UserMessageID: "u1", SentMessageID: "42"}); err != nil {
		t.Fatal(err)
	}
	if err := b.PublishNack(ctx, &message.Nack{UserMessageID: "u2", Reason: "Message not sent"}); err != nil {
		t.Fatal(err)
	}
	if err := b.PublishStatus(ctx, &message.StatusEvent{Status: message.StatusOK, Type: "good_inbound"}); err != nil {
		t.Fatal(err)
	}

	want := []string{"ack", "nack", "status"}
	for _, kind := range want {
		select {
		case ev := <-events:
			switch kind {
			case "ack":
				if _, ok := ev.(*message.Ack); !ok {
					t.Fatalf("event = %T, want *message.Ack", ev)
				}
			case "nack":
				if _, ok := ev.(*message.Nack); !ok {
					t.Fatalf("event = %T, want *message.Nack", ev)
				}
			case "status":
				if _, ok := ev.(*message.StatusEvent); !ok {
					t.Fatalf("event = %T, want *message.StatusEvent", ev)
				}
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestOutboundPumpDeliversToHandler(t *testing.T) {
	b := NewBus(10, 8)
	defer b.Close()

	delivered := make(chan *message.Outbound, 1)
	b.RegisterHandler(func(_ context.Context, msg *message.Outbound) error {
		delivered <- msg
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.pump(ctx)

	if err := b.SendOutbound(&message.Outbound{MessageID: "o1", Content: "hello"}); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-delivered:
		if msg.MessageID != "o1" {
			t.Errorf("MessageID = %q, want o1", msg.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound delivery")
	}
}

func TestPublishDuringCloseDoesNotPanic(t *testing.T) {
	b := NewBus(4, 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for i := 0; i < 200; i++ {
				_ = b.PublishInbound(ctx, &message.Inbound{MessageID: "in"})
				_ = b.SendOutbound(&message.Outbound{MessageID: "out"})
				_ = b.PublishStatus(ctx, &message.StatusEvent{Status: message.StatusOK})
			}
		}()
	}

	// Close while publishers are mid-flight. A send racing the channel close
	// would panic and fail the test.
	b.Close()
	wg.Wait()

	if err := b.PublishInbound(context.Background(), &message.Inbound{}); !errors.Is(err, ErrClosed) {
		t.Errorf("PublishInbound() after close error = %v, want ErrClosed", err)
	}
	if err := b.SendOutbound(&message.Outbound{}); !errors.Is(err, ErrClosed) {
		t.Errorf("SendOutbound() after close error = %v, want ErrClosed", err)
	}
}

func TestPublishAfterCloseReturnsErrClosed(t *testing.T) {
	b := NewBus(10, 8)
	b.Close()

	if err := b.PublishInbound(context.Background(), &message.Inbound{}); err != ErrClosed {
		t.Errorf("PublishInbound() error = %v, want ErrClosed", err)
	}
	if err := b.PublishAck(context.Background(), &message.Ack{}); err != ErrClosed {
		t.Errorf("PublishAck() error = %v, want ErrClosed", err)
	}
}
