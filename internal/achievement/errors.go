package achievement

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an achievement name has no catalog entry.
	ErrNotFound = errors.New("achievement not found")
	// ErrAlreadyExists is returned when adding a name the catalog already holds.
	ErrAlreadyExists = errors.New("achievement already exists")
	// ErrAlreadyGranted is returned when a user already holds the achievement.
	ErrAlreadyGranted = errors.New("achievement already granted")
)

// MalformedError reports a command whose arguments do not match its grammar.
// Hint, when set, is shown to the requester verbatim.
type MalformedError struct {
	Verb   string
	Reason string
	Hint   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s command: %s", e.Verb, e.Reason)
}

// Malformed builds a MalformedError without a user-facing hint.
func Malformed(verb, reason string) error {
	return &MalformedError{Verb: verb, Reason: reason}
}

// StorageError reports a durable read or append that could not complete.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
