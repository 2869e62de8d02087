package achievement

import (
	"fmt"
	"strings"
)

const (
	// FieldSeparator separates the fields of a catalog record and of the add command.
	FieldSeparator = " : "
	// GrantSeparator separates user and achievement in a ledger record.
	GrantSeparator = " -> "
)

// Achievement is one catalog entry.
type Achievement struct {
	Name        string
	Description string
	Criteria    string
}

// Key returns the case-insensitive identity of the achievement name.
func (a Achievement) Key() string {
	return NameKey(a.Name)
}

// NameKey folds an achievement name for comparison.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate reports whether the achievement can be stored and read back unchanged.
func (a Achievement) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("achievement name is required")
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("achievement description is required")
	}
	for _, field := range []string{a.Name, a.Description, a.Criteria} {
		if strings.ContainsAny(field, "\r\n") {
			return fmt.Errorf("achievement fields must be single-line")
		}
	}
	// criteria is the last field, so it may contain the separator
	if strings.Contains(a.Name, FieldSeparator) || strings.Contains(a.Description, FieldSeparator) {
		return fmt.Errorf("achievement name and description must not contain %q", FieldSeparator)
	}
	if a.Name != strings.TrimSpace(a.Name) {
		return fmt.Errorf("achievement name must not have surrounding whitespace")
	}
	return nil
}

// Grant records that User has earned the achievement named Achievement.
type Grant struct {
	User        string
	Achievement string
}

// Validate reports whether the grant can be stored and read back unchanged.
func (g Grant) Validate() error {
	if g.User == "" || strings.ContainsAny(g.User, " \t\r\n") {
		return fmt.Errorf("grant user must be a single token")
	}
	if strings.TrimSpace(g.Achievement) == "" {
		return fmt.Errorf("grant achievement is required")
	}
	if strings.ContainsAny(g.Achievement, "\r\n") {
		return fmt.Errorf("grant achievement must be single-line")
	}
	return nil
}
