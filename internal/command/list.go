package command

import (
	"context"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// ListCommand implements listachieve.
type ListCommand struct{}

func (c *ListCommand) Name() string        { return "listachieve" }
func (c *ListCommand) Usage() string       { return "listachieve" }
func (c *ListCommand) Description() string { return "List all available achievements" }

func (c *ListCommand) Execute(ctx context.Context, args string, env Env) (Reply, error) {
	if args != "" {
		return Reply{}, achievement.Malformed(c.Name(), "takes no arguments")
	}
	return DirectReply("List of achievements: " + strings.Join(env.Catalog.List(ctx), ", ")), nil
}
