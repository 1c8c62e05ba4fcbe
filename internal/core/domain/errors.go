package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// Pipeline Errors.

	// ErrNoMedia indicates the message carries nothing to index.
	ErrNoMedia = errors.New("message has no media")

	// ErrExtraction indicates a message had an unexpected shape.
	// It is local to one message: logged and skipped.
	ErrExtraction = errors.New("extraction failed")

	// Platform Errors.

	// ErrSourceUnresolvable indicates the source cannot be found or accessed
	// (unknown username, private channel, not a member, banned).
	ErrSourceUnresolvable = errors.New("source cannot be resolved")

	// ErrTransient indicates a temporary platform condition such as flood
	// control or a dropped connection. Retrying later may succeed.
	ErrTransient = errors.New("temporary platform error")

	// ErrSessionUnauthorized indicates the platform session is not logged in.
	ErrSessionUnauthorized = errors.New("platform session not authorized")

	// Storage Errors.

	// ErrPersistence indicates the store is unavailable or failed.
	// Fatal for the current pass; progress already committed stays valid.
	ErrPersistence = errors.New("persistence failure")
)

// RetryableError is a transient platform failure carrying a wait hint.
type RetryableError struct {
	// WaitHint is the suggested backoff before retrying. Zero if unknown.
	WaitHint time.Duration

	// Err is the underlying cause.
	Err error
}

func (e *RetryableError) Error() string {
	if e.WaitHint > 0 {
		return fmt.Sprintf("%s (retry in %s): %v", ErrTransient, e.WaitHint, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrTransient, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the cause.
func (e *RetryableError) Unwrap() []error {
	return []error{ErrTransient, e.Err}
}

// NewRetryableError wraps err as a transient failure.
func NewRetryableError(wait time.Duration, err error) *RetryableError {
	return &RetryableError{WaitHint: wait, Err: err}
}

// WaitHint returns the suggested backoff when err is retryable.
func WaitHint(err error) (time.Duration, bool) {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.WaitHint, true
	}
	if errors.Is(err, ErrTransient) {
		return 0, true
	}
	return 0, false
}

// Persistence wraps a store failure in the persistence taxonomy.
// Domain sentinels already meaningful to callers pass through unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// UserMessage renders err as a short reason suitable for end users.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if wait, ok := WaitHint(err); ok {
		if wait > 0 {
			return fmt.Sprintf("Telegram is rate limiting requests, try again in %s.", wait.Round(time.Second))
		}
		return "Telegram is temporarily unavailable, try again later."
	}
	switch {
	case errors.Is(err, ErrSourceUnresolvable):
		return "The channel or group could not be found or is not accessible. Check the username or link and that the account is a member."
	case errors.Is(err, ErrAlreadyExists):
		return "That source is already connected."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input."
	case errors.Is(err, ErrSessionUnauthorized):
		return "The Telegram session is not logged in."
	case errors.Is(err, ErrPersistence):
		return "The document store is unavailable, try again later."
	default:
		return "Unexpected error: " + err.Error()
	}
}
