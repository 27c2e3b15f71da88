package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a
	// uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references a missing row. The wrapped error carries details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to
	// commit or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrJobNotFound      = fmt.Errorf("%w: generation job", ErrNotFound)
	ErrProfileNotFound  = fmt.Errorf("%w: profile", ErrNotFound)
	ErrBookmarkNotFound = fmt.Errorf("%w: bookmark", ErrNotFound)

	// Entity-specific "duplicate" errors.

	// ErrEmailExists indicates a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrBookmarkExists indicates the (owner, question) pair is already
	// bookmarked.
	ErrBookmarkExists = fmt.Errorf("%w: bookmark", ErrDuplicate)

	// ErrActiveJobExists indicates the owner already has a pending or
	// processing generation job. It backs the one-active-job-per-user
	// invariant at the database level.
	ErrActiveJobExists = fmt.Errorf("%w: active generation job", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
