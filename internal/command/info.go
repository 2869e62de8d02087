package command

import (
	"context"
	"fmt"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// InfoCommand implements info <achievement>.
type InfoCommand struct{}

func (c *InfoCommand) Name() string        { return "info" }
func (c *InfoCommand) Usage() string       { return "info <achievement>" }
func (c *InfoCommand) Description() string { return "Show the full block of info on the specified achievement" }

func (c *InfoCommand) Execute(ctx context.Context, args string, env Env) (Reply, error) {
	if args == "" {
		return Reply{}, achievement.Malformed(c.Name(), "need an achievement name")
	}
	a, err := env.Catalog.FindByName(ctx, args)
	if err != nil {
		return Reply{}, err
	}
	if a.Criteria == "" {
		return DirectReply(fmt.Sprintf("%s: %s", a.Name, a.Description)), nil
	}
	return DirectReply(fmt.Sprintf("%s: %s (%s)", a.Name, a.Description, a.Criteria)), nil
}
