package command

import (
	"errors"

	"github.com/MEKXH/achievebot/internal/achievement"
)

// Failure kinds, used in logs and metrics. Users never see them.
const (
	KindOK          = "ok"
	KindNotFound    = "not_found"
	KindDuplicate   = "duplicate"
	KindMalformed   = "malformed"
	KindUnknownVerb = "unknown_verb"
	KindStorage     = "storage"
	KindInternal    = "internal"
)

// User-visible response texts.
const (
	FallbackText      = "What?"
	NotFoundText      = "Achievement not found!"
	AlreadyEarnedText = "Achievement already earned"
	AlreadyExistsText = "Achievement not added: achievement with that name already exists!"
	AddArityText      = "Achievement not added (I need at least a name and a description, more info optional)"
	StorageFailText   = "Internal error, try again."
)

// ReplyForError maps a command failure to exactly one direct reply and the
// kind it was classified as.
func ReplyForError(err error) (Reply, string) {
	switch {
	case errors.Is(err, achievement.ErrNotFound):
		return DirectReply(NotFoundText), KindNotFound
	case errors.Is(err, achievement.ErrAlreadyGranted):
		return DirectReply(AlreadyEarnedText), KindDuplicate
	case errors.Is(err, achievement.ErrAlreadyExists):
		return DirectReply(AlreadyExistsText), KindDuplicate
	}

	var malformed *achievement.MalformedError
	if errors.As(err, &malformed) {
		if malformed.Hint != "" {
			return DirectReply(malformed.Hint), KindMalformed
		}
		return DirectReply(FallbackText), KindMalformed
	}

	var storageErr *achievement.StorageError
	if errors.As(err, &storageErr) {
		return DirectReply(StorageFailText), KindStorage
	}
	return DirectReply(FallbackText), KindInternal
}
