package achievement

import (
	"fmt"
	"strings"
)

// FormatAchievement renders a catalog record without the trailing newline.
func FormatAchievement(a Achievement) string {
	fields := []string{a.Name, a.Description}
	if a.Criteria != "" {
		fields = append(fields, a.Criteria)
	}
	return strings.Join(fields, FieldSeparator)
}

// ParseAchievement decodes one catalog record. Trailing whitespace is ignored.
func ParseAchievement(line string) (Achievement, error) {
	line = strings.TrimRight(line, " \t\r\n")
	parts := strings.Split(line, FieldSeparator)
	if len(parts) < 2 {
		return Achievement{}, fmt.Errorf("catalog record %q: need name and description", line)
	}
	a := Achievement{
		Name:        strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		// extra separators past the criteria field belong to the criteria text
		a.Criteria = strings.TrimSpace(strings.Join(parts[2:], FieldSeparator))
	}
	if a.Name == "" {
		return Achievement{}, fmt.Errorf("catalog record %q: empty name", line)
	}
	return a, nil
}

// FormatGrant renders a ledger record without the trailing newline.
func FormatGrant(g Grant) string {
	return g.User + GrantSeparator + g.Achievement
}

// ParseGrant decodes one ledger record. Trailing whitespace is ignored.
func ParseGrant(line string) (Grant, error) {
	line = strings.TrimRight(line, " \t\r\n")
	user, name, ok := strings.Cut(line, GrantSeparator)
	user = strings.TrimSpace(user)
	name = strings.TrimSpace(name)
	if !ok || user == "" || name == "" {
		return Grant{}, fmt.Errorf("ledger record %q: want \"<user> -> <achievement>\"", line)
	}
	return Grant{User: user, Achievement: name}, nil
}
