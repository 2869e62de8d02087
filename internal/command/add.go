package command

import (
	"context"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// AddCommand implements add <name> : <description>[ : <criteria>].
type AddCommand struct{}

func (c *AddCommand) Name() string  { return "add" }
func (c *AddCommand) Usage() string { return "add <name> : <description> : <how to earn>" }
func (c *AddCommand) Description() string {
	return "Add a new achievement to the system (<how to earn> is optional)"
}

func (c *AddCommand) Execute(ctx context.Context, args string, env Env) (Reply, error) {
	parts := strings.Split(args, achievement.FieldSeparator)
	if len(parts) < 2 {
		return Reply{}, &achievement.MalformedError{Verb: c.Name(), Reason: "need name and description", Hint: AddArityText}
	}

	a := achievement.Achievement{
		Name:        strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		a.Criteria = strings.TrimSpace(strings.Join(parts[2:], achievement.FieldSeparator))
	}
	if a.Name == "" || a.Description == "" {
		return Reply{}, &achievement.MalformedError{Verb: c.Name(), Reason: "empty name or description", Hint: AddArityText}
	}
	if err := a.Validate(); err != nil {
		return Reply{}, achievement.Malformed(c.Name(), err.Error())
	}

	if err := env.Catalog.Add(ctx, a); err != nil {
		return Reply{}, err
	}
	return DirectReply("Added new achievement: " + a.Name), nil
}
