package channel

import (
	"context"
	"strings"

	"github.com/MEKXH/achievebot/internal/bus"
)

// Channel interface for chat platforms
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg *bus.OutboundMessage) error
	IsAllowed(senderID string) bool
}

// BaseChannel provides common functionality
type BaseChannel struct {
	Bus       *bus.MessageBus
	BotName   string
	AllowList map[string]bool
}

// IsAllowed checks if sender is permitted. Entries match the raw sender, its
// bare form or either half of an "id|username" pair, with or without "@".
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if len(b.AllowList) == 0 {
		return true
	}

	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}
	bare := BareUser(senderID)

	for allowed := range b.AllowList {
		normalized := strings.TrimSpace(allowed)
		trimmed := strings.TrimPrefix(normalized, "@")
		if normalized == senderID || trimmed == senderID || trimmed == bare ||
			normalized == idPart || trimmed == idPart ||
			(userPart != "" && (normalized == userPart || trimmed == userPart)) {
			return true
		}
	}

	return false
}

// Accept applies addressing to a raw message. It returns the command text and
// true when the message is meant for the bot.
func (b *BaseChannel) Accept(text string, private bool) (string, bool) {
	return Address(b.BotName, text, private)
}

// PublishInbound queues msg for the engine, waiting for room until ctx is done.
// Messages without a request id get one here.
func (b *BaseChannel) PublishInbound(ctx context.Context, msg *bus.InboundMessage) error {
	if msg.RequestID == "" {
		msg.RequestID = bus.NewRequestID()
	}
	return b.Bus.PublishInboundContext(ctx, msg)
}
