package store

import (
	"errors"
	"fmt"
)

// Recoverable vote failures, reported to the caller and never fatal.
var (
	ErrAlreadyVoted    = errors.New("user has already rated this tutor")
	ErrTutorNotFound   = errors.New("tutor not found")
	ErrInvalidReaction = errors.New("invalid reaction kind")
)

// StorageError wraps a persistence failure. The underlying mutation was
// rolled back; counters and vote records are unchanged.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidReaction reports whether kind is an accepted reaction.
func ValidReaction(kind string) bool {
	return kind == ReactionLike || kind == ReactionDislike
}
