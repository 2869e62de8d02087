package channel

import (
	"context"
	"testing"

	"github.com/MEKXH/achievebot/internal/bus"
)

type mockChannel struct {
	BaseChannel
	name string
}

func (m *mockChannel) Name() string                    { return m.name }
func (m *mockChannel) Start(ctx context.Context) error { return nil }
func (m *mockChannel) Stop(ctx context.Context) error  { return nil }
func (m *mockChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	return nil
}

func TestBaseChannel_IsAllowed(t *testing.T) {
	msgBus := bus.NewMessageBus(1)
	ch := &mockChannel{
		BaseChannel: BaseChannel{Bus: msgBus, AllowList: map[string]bool{"u1": true}},
		name:        "mock",
	}

	if ch.IsAllowed("u1") != true {
		t.Fatalf("expected u1 allowed")
	}
	if ch.IsAllowed("u2") != false {
		t.Fatalf("expected u2 denied")
	}
}

func TestBaseChannel_IsAllowed_CompoundSenderAndUsername(t *testing.T) {
	msgBus := bus.NewMessageBus(1)
	ch := &mockChannel{
		BaseChannel: BaseChannel{Bus: msgBus, AllowList: map[string]bool{"123456": true, "@alice": true}},
		name:        "mock",
	}

	if !ch.IsAllowed("123456|alice") {
		t.Fatal("expected sender allowed by id in compound sender string")
	}
	if !ch.IsAllowed("999999|alice") {
		t.Fatal("expected sender allowed by username with @ prefix")
	}
	if !ch.IsAllowed("alice!~a@example.org") {
		t.Fatal("expected decorated sender allowed by bare nick")
	}
}

func TestBaseChannel_EmptyAllowListAllowsEveryone(t *testing.T) {
	ch := &mockChannel{BaseChannel: BaseChannel{Bus: bus.NewMessageBus(1)}, name: "mock"}
	if !ch.IsAllowed("anyone") {
		t.Fatal("expected empty allow list to allow everyone")
	}
}

func TestBaseChannel_PublishInbound(t *testing.T) {
	msgBus := bus.NewMessageBus(1)
	ch := &mockChannel{BaseChannel: BaseChannel{Bus: msgBus, BotName: "achievebot"}, name: "mock"}

	text, ok := ch.Accept("achievebot: help", false)
	if !ok {
		t.Fatal("expected message addressed to bot")
	}
	if err := ch.PublishInbound(context.Background(), &bus.InboundMessage{Channel: "mock", SenderID: "alice", Content: text}); err != nil {
		t.Fatalf("PublishInbound: %v", err)
	}

	got := <-msgBus.Inbound()
	if got.Content != "help" || got.RequestID == "" {
		t.Fatalf("unexpected inbound message %+v", got)
	}

	// Fill the single slot.
	_ = ch.PublishInbound(context.Background(), &bus.InboundMessage{Content: "first"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ch.PublishInbound(ctx, &bus.InboundMessage{Content: "second"}); err == nil {
		t.Fatal("expected error when queue is full and context is done")
	}
}
