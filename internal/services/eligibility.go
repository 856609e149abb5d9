package services

import (
	"time"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

// Downvote trust thresholds. New or low-karma accounts may only upvote.
const (
	DownvoteMinScore      = 10
	DownvoteMinAccountAge = 30 * 24 * time.Hour
)

// voteTarget is the subset of an item's state the gate needs. Both
// posts and comments satisfy it.
type voteTarget interface {
	ItemAuthorID() *uint
	ItemCreatedAt() time.Time
	ItemDeletedAt() *time.Time
}

// checkVoteEligibility runs the ordered gate for a vote attempt. Checks
// run strictly in this order and the first failure wins, so callers get
// a stable error for any given state:
//
//	signed in -> registered -> target exists -> target not deleted ->
//	author known -> not the voter's own item -> downvote trust ->
//	not already voted
//
// The alreadyVoted flag comes from a courtesy pre-check; the unique
// index on the vote table is the authoritative guard.
func checkVoteEligibility(voter *models.User, target voteTarget, value int, alreadyVoted bool, now time.Time) error {
	if voter == nil {
		return apperr.ErrUnauthenticated
	}
	if !voter.IsRegistered() {
		return apperr.ErrUnregistered
	}
	if target == nil {
		return apperr.ErrNotFound
	}
	if target.ItemDeletedAt() != nil {
		return apperr.ErrTargetDeleted
	}
	author := target.ItemAuthorID()
	if author == nil {
		return apperr.ErrAuthorUnknown
	}
	if *author == voter.ID {
		return apperr.ErrSelfAction
	}
	if value < 0 {
		if voter.Score < DownvoteMinScore || now.Sub(voter.CreatedAt) < DownvoteMinAccountAge {
			return apperr.ErrInsufficientTrust
		}
	}
	if alreadyVoted {
		return apperr.ErrAlreadyVoted
	}
	return nil
}

// checkOwn gates edit and delete: the actor must be the item's author
// and the item must still be live.
func checkOwn(actor *models.User, target voteTarget) error {
	if actor == nil {
		return apperr.ErrUnauthenticated
	}
	if !actor.IsRegistered() {
		return apperr.ErrUnregistered
	}
	if target == nil {
		return apperr.ErrNotFound
	}
	if target.ItemDeletedAt() != nil {
		return apperr.ErrAlreadyDeleted
	}
	author := target.ItemAuthorID()
	if author == nil || *author != actor.ID {
		return apperr.ErrForbidden
	}
	return nil
}
