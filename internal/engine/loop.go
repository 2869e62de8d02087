// Package engine runs achievement commands received from the message bus.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/MEKXH/achievebot/internal/audit"
	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/command"
	"github.com/MEKXH/achievebot/internal/metrics"
	"github.com/MEKXH/achievebot/internal/router"
	"github.com/MEKXH/achievebot/internal/store"
)

// Loop is the command engine. It owns the catalog and the ledger.
//
// Run consumes the bus on a single goroutine, so commands from the bus are
// processed strictly one at a time. Handle may also be called directly
// (gateway, console); the stores serialize their own writers, so concurrent
// callers cannot break the uniqueness of names or grants.
type Loop struct {
	bus           *bus.MessageBus
	commands      *command.Registry
	catalog       *store.Catalog
	ledger        *store.Ledger
	runtimeMetric *metrics.RuntimeMetrics
	auditWriter   *audit.Writer
	now           func() time.Time
}

// NewLoop creates the engine over already opened stores. The command table
// is fixed at construction.
func NewLoop(msgBus *bus.MessageBus, catalog *store.Catalog, ledger *store.Ledger) (*Loop, error) {
	return newLoop(msgBus, catalog, ledger, command.NewDefaultRegistry())
}

func newLoop(msgBus *bus.MessageBus, catalog *store.Catalog, ledger *store.Ledger, commands *command.Registry) (*Loop, error) {
	if catalog == nil || ledger == nil {
		return nil, fmt.Errorf("catalog and ledger are required")
	}
	return &Loop{
		bus:      msgBus,
		commands: commands,
		catalog:  catalog,
		ledger:   ledger,
		now:      time.Now,
	}, nil
}

// SetRuntimeMetrics attaches a runtime metrics recorder for command stats.
func (l *Loop) SetRuntimeMetrics(recorder *metrics.RuntimeMetrics) {
	l.runtimeMetric = recorder
}

// SetAuditWriter attaches the command log.
func (l *Loop) SetAuditWriter(writer *audit.Writer) {
	l.auditWriter = writer
}

// Catalog returns the achievement catalog.
func (l *Loop) Catalog() *store.Catalog {
	return l.catalog
}

// Ledger returns the grant ledger.
func (l *Loop) Ledger() *store.Ledger {
	return l.ledger
}

// Run processes inbound messages until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.bus == nil {
		return fmt.Errorf("message bus is required")
	}
	slog.Info("command engine started", "achievements", l.catalog.Len(), "grants", l.ledger.Len())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-l.bus.Inbound():
			if !ok {
				return fmt.Errorf("inbound channel closed")
			}
			if msg == nil {
				slog.Warn("received nil inbound message")
				continue
			}
			out := l.Handle(ctx, msg)
			if err := l.bus.PublishOutboundContext(ctx, out); err != nil {
				return err
			}
		}
	}
}

// Handle executes one addressed command and returns exactly one routed reply.
func (l *Loop) Handle(ctx context.Context, msg *bus.InboundMessage) *bus.OutboundMessage {
	if strings.TrimSpace(msg.RequestID) == "" {
		msg.RequestID = bus.NewRequestID()
	}
	ctx = bus.WithRequestID(ctx, msg.RequestID)

	start := l.now()
	reply, verb, args, kind := l.execute(ctx, msg)

	logArgs := []any{
		"request_id", msg.RequestID,
		"channel", msg.Channel,
		"chat_id", msg.ChatID,
		"sender", msg.SenderID,
		"verb", verb,
		"kind", kind,
	}
	switch kind {
	case command.KindOK:
		slog.Info("command processed", logArgs...)
	case command.KindStorage, command.KindInternal:
		slog.Error("command failed", logArgs...)
	default:
		slog.Info("command rejected", logArgs...)
	}

	if _, err := l.runtimeMetric.RecordCommand(l.now().Sub(start), kind); err != nil {
		slog.Warn("record runtime metrics failed", "scope", "command", "error", err)
	}
	l.audit(msg, verb, args, kind, reply)
	return router.Route(msg, reply)
}

// audit records recognized commands. Unknown verbs are chat noise and skipped.
func (l *Loop) audit(msg *bus.InboundMessage, verb, args, kind string, reply command.Reply) {
	if l.auditWriter == nil || kind == command.KindUnknownVerb {
		return
	}
	eventType := audit.TypeCommand
	if kind == command.KindOK && (verb == "add" || verb == "grant") {
		eventType = audit.TypeStateChange
	}
	if err := l.auditWriter.Append(audit.Event{
		Time:      l.now().UTC(),
		Type:      eventType,
		RequestID: msg.RequestID,
		Channel:   msg.Channel,
		Sender:    msg.SenderID,
		Chat:      msg.ChatID,
		Verb:      verb,
		Args:      args,
		Result:    kind,
	}); err != nil {
		slog.Warn("append audit event failed", "request_id", msg.RequestID, "error", err)
	}
}

func (l *Loop) execute(ctx context.Context, msg *bus.InboundMessage) (reply command.Reply, verb, args, kind string) {
	cmd, verb, args, ok := l.commands.Lookup(msg.Content)
	if !ok {
		return command.DirectReply(command.FallbackText), verb, args, command.KindUnknownVerb
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("command panicked",
				"request_id", msg.RequestID,
				"verb", verb,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reply, kind = command.DirectReply(command.FallbackText), command.KindInternal
		}
	}()

	reply, err := cmd.Execute(ctx, args, command.Env{
		Channel:      msg.Channel,
		ChatID:       msg.ChatID,
		SenderID:     msg.SenderID,
		Catalog:      l.catalog,
		Ledger:       l.ledger,
		ListCommands: l.commands.List,
	})
	if err != nil {
		reply, kind = command.ReplyForError(err)
		slog.Debug("command error", "request_id", msg.RequestID, "verb", verb, "kind", kind, "error", err)
		return reply, verb, args, kind
	}
	return reply, verb, args, command.KindOK
}

// ProcessDirect runs text as a private command from sender and returns the reply.
func (l *Loop) ProcessDirect(ctx context.Context, channel, sender, text string) *bus.OutboundMessage {
	return l.Handle(ctx, &bus.InboundMessage{
		Channel:   channel,
		SenderID:  sender,
		ChatID:    sender,
		Private:   true,
		Content:   text,
		Timestamp: l.now(),
	})
}
