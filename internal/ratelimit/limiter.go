package ratelimit

import (
	"context"
	"fmt"
	"time"

	"opensocial/internal/apperr"
)

// Action identifies a rate-limited operation class.
type Action string

const (
	ActionLogin       Action = "login"
	ActionProfileEdit Action = "profile_edit"
	ActionPost        Action = "post"
	ActionComment     Action = "comment"
	ActionVote        Action = "vote"
	ActionBookmark    Action = "bookmark"
)

// Config is the per-action quota: at most Limit events in any sliding
// Window.
type Config struct {
	Limit  int
	Window time.Duration
}

// Configs holds the built-in quotas. Login is keyed by client IP,
// everything else by user id.
var Configs = map[Action]Config{
	ActionLogin:       {Limit: 3, Window: 15 * time.Minute},
	ActionProfileEdit: {Limit: 3, Window: 30 * time.Minute},
	ActionPost:        {Limit: 5, Window: 15 * time.Minute},
	ActionComment:     {Limit: 10, Window: 15 * time.Minute},
	ActionVote:        {Limit: 30, Window: 15 * time.Minute},
	ActionBookmark:    {Limit: 30, Window: 15 * time.Minute},
}

// Decision is the outcome of a limiter check. RetryAfter is only
// meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store records events in a sliding window and answers whether another
// one fits. Recording and checking happen atomically per key.
type Store interface {
	// Take records an event for key if the quota allows it, and reports
	// the decision. When denied, nothing is recorded.
	Take(ctx context.Context, key string, cfg Config) (Decision, error)
}

// Limiter applies per-action sliding-window quotas.
type Limiter struct {
	store Store
}

func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow consumes one unit of quota for the given action and subject.
// Returns *apperr.RateLimitError when the quota is exhausted. Storage
// failures are returned as-is; the caller decides whether to fail open.
func (l *Limiter) Allow(ctx context.Context, action Action, subject string) error {
	cfg, ok := Configs[action]
	if !ok {
		return fmt.Errorf("unknown rate limit action %q", action)
	}

	d, err := l.store.Take(ctx, fmt.Sprintf("ratelimit:%s:%s", action, subject), cfg)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return &apperr.RateLimitError{RetryAfter: d.RetryAfter}
	}
	return nil
}
