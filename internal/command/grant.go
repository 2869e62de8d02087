package command

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// GrantCommand implements grant <user> <achievement> and announces the unlock to the chat.
type GrantCommand struct{}

func (c *GrantCommand) Name() string        { return "grant" }
func (c *GrantCommand) Usage() string       { return "grant <user> <achievement>" }
func (c *GrantCommand) Description() string { return "Grant achievement to user" }

func (c *GrantCommand) Execute(ctx context.Context, args string, env Env) (Reply, error) {
	i := strings.IndexFunc(args, unicode.IsSpace)
	if i <= 0 {
		return Reply{}, achievement.Malformed(c.Name(), "need a user and an achievement")
	}
	user, name := args[:i], strings.TrimSpace(args[i:])
	if name == "" {
		return Reply{}, achievement.Malformed(c.Name(), "need a user and an achievement")
	}

	a, err := env.Catalog.FindByName(ctx, name)
	if err != nil {
		return Reply{}, err
	}
	if err := env.Ledger.Grant(ctx, user, a.Name); err != nil {
		return Reply{}, err
	}
	return BroadcastReply(fmt.Sprintf("Achievement unlocked! %s has earned the achievement %s!", user, a.Name)), nil
}
