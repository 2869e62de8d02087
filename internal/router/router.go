// Package router turns a command reply into an addressed outbound message.
package router

import (
	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/command"
)

// Route decides where reply goes. Direct replies are sent privately to the
// sender no matter where the command came from; broadcast replies go as a
// notice to the originating chat, which is the sender itself for private messages.
func Route(in *bus.InboundMessage, reply command.Reply) *bus.OutboundMessage {
	out := &bus.OutboundMessage{
		Channel:   in.Channel,
		Mode:      reply.Mode,
		Content:   reply.Content,
		RequestID: in.RequestID,
	}
	switch reply.Mode {
	case bus.Broadcast:
		out.ChatID = in.ReplyChat()
	default:
		out.Mode = bus.Direct
		out.ChatID = in.SenderID
	}
	return out
}
