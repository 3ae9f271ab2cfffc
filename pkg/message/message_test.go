package message

import (
	"encoding/json"
	"testing"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestIsReplyable(t *testing.T) {
	tests := []struct {
		name string
		msg  Inbound
		want bool
	}{
		{
			name: "plain with from addr",
			msg:  Inbound{FromAddr: "12345"},
			want: true,
		},
		{
			name: "plain without from addr",
			msg:  Inbound{},
			want: false,
		},
		{
			name: "inline query with id",
			msg: Inbound{TransportMetadata: TransportMetadata{
				Type:          PayloadInlineQuery,
				InlineQueryID: "q1",
			}},
			want: true,
		},
		{
			name: "inline query missing id",
			msg:  Inbound{TransportMetadata: TransportMetadata{Type: PayloadInlineQuery}},
			want: false,
		},
		{
			name: "callback query with id",
			msg: Inbound{TransportMetadata: TransportMetadata{
				Type:            PayloadCallbackQuery,
				CallbackQueryID: "cb1",
			}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.IsReplyable(); got != tt.want {
				t.Errorf("IsReplyable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutboundHintsNeverNil(t *testing.T) {
	var m Outbound
	if m.Hints() == nil {
		t.Fatal("Hints() returned nil for zero-value message")
	}

	m.HelperMetadata.Telegram = &TelegramHints{ParseMode: "Markdown"}
	if m.Hints().ParseMode != "Markdown" {
		t.Errorf("Hints().ParseMode = %q, want Markdown", m.Hints().ParseMode)
	}
}

func TestTransportMetadataOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(TransportMetadata{TelegramMsgID: 7})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"telegram_msg_id":7}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
