package bus

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// DeliveryMode selects how a reply reaches its audience.
type DeliveryMode string

const (
	// Direct replies go privately to the sender.
	Direct DeliveryMode = "direct"
	// Broadcast replies go as a notice to the chat the command arrived on.
	Broadcast DeliveryMode = "broadcast"
)

// InboundMessage is an addressed command received from a channel.
// Content has already been stripped of the bot-name prefix.
type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Private   bool
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
	RequestID string
}

// ReplyChat returns the chat a broadcast reply should go to.
// Private messages have no shared chat, so the sender stands in.
func (m *InboundMessage) ReplyChat() string {
	if m.Private || strings.TrimSpace(m.ChatID) == "" {
		return m.SenderID
	}
	return m.ChatID
}

// OutboundMessage to send to a channel
type OutboundMessage struct {
	Channel   string
	ChatID    string
	Mode      DeliveryMode
	Content   string
	Metadata  map[string]any
	RequestID string
}

// NewRequestID creates a request id for tracing.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID adds a request id to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext reads request id from context.
func RequestIDFromContext(ctx context.Context) string {
	v := ctx.Value(requestIDContextKey{})
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
