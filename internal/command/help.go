package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// controlUsage lists the verbs the chat transport handles itself.
var controlUsage = []string{
	"join <channel> -> Join the specified channel",
	"leave <channel> -> Leave the specified channel",
	"quit -> Quit chat",
}

// HelpCommand implements help.
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Usage() string       { return "help" }
func (c *HelpCommand) Description() string { return "Display this help" }

func (c *HelpCommand) Execute(_ context.Context, args string, env Env) (Reply, error) {
	if args != "" {
		return Reply{}, achievement.Malformed(c.Name(), "takes no arguments")
	}
	var sb strings.Builder
	sb.WriteString("I am Achievebot, made to track chat achievements\n")
	sb.WriteString("Commands:\n")
	if env.ListCommands != nil {
		for _, cmd := range env.ListCommands() {
			sb.WriteString(fmt.Sprintf("%s -> %s\n", cmd.Usage(), cmd.Description()))
		}
	}
	sb.WriteString(strings.Join(controlUsage, "\n"))
	return DirectReply(sb.String()), nil
}
