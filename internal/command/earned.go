package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// EarnedCommand implements earned <user>.
type EarnedCommand struct{}

func (c *EarnedCommand) Name() string        { return "earned" }
func (c *EarnedCommand) Usage() string       { return "earned <user>" }
func (c *EarnedCommand) Description() string { return "Display all of the achievements the user has earned" }

func (c *EarnedCommand) Execute(ctx context.Context, args string, env Env) (Reply, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Reply{}, achievement.Malformed(c.Name(), "need a user")
	}
	user := fields[0]
	earned := env.Ledger.ListEarned(ctx, user)
	return DirectReply(fmt.Sprintf("User %s has earned %s", user, strings.Join(earned, ", "))), nil
}
