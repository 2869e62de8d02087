package bus

import "context"

// MessageBus decouples channels from the command engine. Channels publish
// inbound messages and return to their receive loop; the engine consumes
// them one at a time, so slow storage only grows the queue.
type MessageBus struct {
	inbound  chan *InboundMessage
	outbound chan *OutboundMessage
}

// NewMessageBus creates a bus whose queues hold up to size messages each.
func NewMessageBus(size int) *MessageBus {
	if size < 1 {
		size = 1
	}
	return &MessageBus{
		inbound:  make(chan *InboundMessage, size),
		outbound: make(chan *OutboundMessage, size),
	}
}

// PublishInbound queues msg for the engine, blocking while the queue is full.
func (b *MessageBus) PublishInbound(msg *InboundMessage) {
	b.inbound <- msg
}

// PublishInboundContext is PublishInbound that gives up when ctx is done.
func (b *MessageBus) PublishInboundContext(ctx context.Context, msg *InboundMessage) error {
	select {
	case b.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbound returns the inbound queue.
func (b *MessageBus) Inbound() <-chan *InboundMessage {
	return b.inbound
}

// PublishOutbound queues msg for delivery, blocking while the queue is full.
func (b *MessageBus) PublishOutbound(msg *OutboundMessage) {
	b.outbound <- msg
}

// Outbound returns the outbound queue.
func (b *MessageBus) Outbound() <-chan *OutboundMessage {
	return b.outbound
}

// PublishOutboundContext is PublishOutbound that gives up when ctx is done.
func (b *MessageBus) PublishOutboundContext(ctx context.Context, msg *OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
