package channel

import (
	"strings"
	"unicode"
)

// BareUser strips transport decoration from a sender identity:
// "nick!user@host" becomes "nick" and a leading "@" is dropped.
func BareUser(raw string) string {
	user := strings.TrimSpace(raw)
	if idx := strings.IndexByte(user, '!'); idx > 0 {
		user = user[:idx]
	}
	return strings.TrimPrefix(user, "@")
}

// Address decides whether text is addressed to botName. Private messages are
// always addressed. In a group the text must start with the bot name,
// optionally followed by ':' or ','; the prefix and the separator are removed.
func Address(botName, text string, private bool) (string, bool) {
	if private {
		return strings.TrimSpace(text), true
	}
	name := strings.TrimSpace(botName)
	if name == "" {
		return "", false
	}

	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if len(trimmed) < len(name) || !strings.EqualFold(trimmed[:len(name)], name) {
		return "", false
	}
	rest := trimmed[len(name):]
	if rest != "" {
		switch rest[0] {
		case ':', ',':
			rest = rest[1:]
		default:
			// "botnamefoo" is somebody else.
			if !unicode.IsSpace(rune(rest[0])) {
				return "", false
			}
		}
	}
	return strings.TrimSpace(rest), true
}

// ControlKind names a transport control verb.
type ControlKind string

const (
	ControlJoin  ControlKind = "join"
	ControlLeave ControlKind = "leave"
	ControlQuit  ControlKind = "quit"
)

// Control is a transport-level request that never reaches the engine.
type Control struct {
	Kind ControlKind
	Chat string
	Key  string
}

// ParseControl recognizes "join <chat> [<key>]", "leave <chat>" and "quit".
// Control verbs with the wrong number of arguments are not controls and fall
// through to the engine, which answers them like any unknown verb.
func ParseControl(text string) (Control, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Control{}, false
	}
	switch ControlKind(strings.ToLower(fields[0])) {
	case ControlJoin:
		switch len(fields) {
		case 2:
			return Control{Kind: ControlJoin, Chat: fields[1]}, true
		case 3:
			return Control{Kind: ControlJoin, Chat: fields[1], Key: fields[2]}, true
		}
	case ControlLeave:
		if len(fields) == 2 {
			return Control{Kind: ControlLeave, Chat: fields[1]}, true
		}
	case ControlQuit:
		if len(fields) == 1 {
			return Control{Kind: ControlQuit}, true
		}
	}
	return Control{}, false
}
