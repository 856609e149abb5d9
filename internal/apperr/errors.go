package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Business logic errors. Handlers map these to HTTP statuses; everything
// else is treated as a storage failure and surfaced generically.
var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrUnregistered    = errors.New("account has no username yet")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")

	// Eligibility denials
	ErrTargetDeleted     = errors.New("target item was deleted")
	ErrAuthorUnknown     = errors.New("target item author no longer exists")
	ErrSelfAction        = errors.New("cannot vote on your own item")
	ErrInsufficientTrust = errors.New("downvoting requires more karma and account age")
	ErrAlreadyVoted      = errors.New("already voted on this item")

	// Item store conflicts
	ErrEditLimit      = errors.New("edit limit reached")
	ErrTitlePinned    = errors.New("title can no longer be changed")
	ErrAlreadyDeleted = errors.New("item already deleted")
	ErrAlreadyExists  = errors.New("resource already exists")

	// Account lifecycle
	ErrCooldownPeriod    = errors.New("email is in the re-registration cooldown period")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrAlreadyRegistered = errors.New("account already has a username")
)

// ValidationError carries per-field messages. It never touches storage.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Add appends a message for a field, allocating the map on first use.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Err returns the error if any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RateLimitError reports an exhausted quota. The caller surfaces a
// wait-and-retry message; the system never retries on its own.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	minutes := int(e.RetryAfter.Minutes()) + 1
	return fmt.Sprintf("rate limit exceeded, try again in %d minute(s)", minutes)
}
