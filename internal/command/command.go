package command

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/store"
)

// Env carries per-invocation context for a command.
type Env struct {
	Channel      string
	ChatID       string
	SenderID     string
	Catalog      *store.Catalog
	Ledger       *store.Ledger
	ListCommands func() []Command // for help
}

// Reply is the response descriptor a command produces.
type Reply struct {
	Mode    bus.DeliveryMode
	Content string
}

// DirectReply builds a reply for the sender only.
func DirectReply(content string) Reply {
	return Reply{Mode: bus.Direct, Content: content}
}

// BroadcastReply builds a notice for the whole chat.
func BroadcastReply(content string) Reply {
	return Reply{Mode: bus.Broadcast, Content: content}
}

// Command is the interface every chat command must implement.
type Command interface {
	// Name returns the verb that triggers the command (e.g. "grant").
	Name() string
	// Usage returns the argument grammar shown by help.
	Usage() string
	// Description returns a short human-readable summary.
	Description() string
	// Execute runs the command. args is the trimmed text after the verb.
	// Expected failures are returned as the errors of package achievement.
	Execute(ctx context.Context, args string, env Env) (Reply, error)
}

// Parse splits a command line into its lower-cased verb and the trimmed rest.
// An empty or blank line yields an empty verb.
func Parse(line string) (verb, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimSpace(line[i:])
}

// Registry is the fixed table of commands the engine dispatches to.
type Registry struct {
	mu    sync.RWMutex
	cmds  map[string]Command
	order []string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// NewDefaultRegistry returns the registry holding every achievement command.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GrantCommand{})
	r.Register(&EarnedCommand{})
	r.Register(&ListCommand{})
	r.Register(&AddCommand{})
	r.Register(&InfoCommand{})
	r.Register(&HelpCommand{})
	return r
}

// Register adds a command. Panics on duplicate names.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(cmd.Name())
	if _, dup := r.cmds[name]; dup {
		panic("command already registered: " + name)
	}
	r.cmds[name] = cmd
	r.order = append(r.order, name)
}

// Lookup parses a command line. If its verb is registered, it returns the
// command, the remaining args, and true. The verb is returned either way.
func (r *Registry) Lookup(line string) (cmd Command, verb, args string, ok bool) {
	verb, args = Parse(line)
	if verb == "" {
		return nil, "", "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok = r.cmds[verb]
	if !ok {
		return nil, verb, "", false
	}
	return cmd, verb, args, true
}

// List returns all registered commands in registration order.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.cmds[name])
	}
	return out
}
