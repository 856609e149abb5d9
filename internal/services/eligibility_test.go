package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

func strptr(s string) *string { return &s }
func uintp(v uint) *uint { return &v }

func TestCheckVoteEligibility(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-90 * 24 * time.Hour)

	trusted := &models.User{ID: 1, Username: strptr("alice"), Score: 50, CreatedAt: old}
	newbie := &models.User{ID: 2, Username: strptr("bob"), Score: 0, CreatedAt: now.Add(-time.Hour)}
	richNewbie := &models.User{ID: 3, Username: strptr("carol"), Score: 100, CreatedAt: now.Add(-time.Hour)}
	unregistered := &models.User{ID: 4, CreatedAt: old}

	live := &models.Post{AuthorID: uintp(9), CreatedAt: now.Add(-time.Hour)}
	deletedAt := now.Add(-time.Minute)
	dead := &models.Post{AuthorID: uintp(9), CreatedAt: now.Add(-time.Hour), DeletedAt: &deletedAt}
	orphan := &models.Post{AuthorID: nil, CreatedAt: now.Add(-time.Hour)}
	own := &models.Post{AuthorID: uintp(1), CreatedAt: now.Add(-time.Hour)}

	tests := []struct {
		name         string
		voter        *models.User
		target       voteTarget
		value        int
		alreadyVoted bool
		want         error
	}{
		{"anonymous", nil, live, 1, false, apperr.ErrUnauthenticated},
		{"unregistered", unregistered, live, 1, false, apperr.ErrUnregistered},
		{"missing target", trusted, nil, 1, false, apperr.ErrNotFound},
		{"tombstoned target", trusted, dead, 1, false, apperr.ErrTargetDeleted},
		{"orphaned target", trusted, orphan, 1, false, apperr.ErrAuthorUnknown},
		{"own item", trusted, own, 1, false, apperr.ErrSelfAction},
		{"downvote without karma", newbie, live, -1, false, apperr.ErrInsufficientTrust},
		{"downvote with karma but young account", richNewbie, live, -1, false, apperr.ErrInsufficientTrust},
		{"duplicate vote", trusted, live, 1, true, apperr.ErrAlreadyVoted},
		{"upvote ok", trusted, live, 1, false, nil},
		{"upvote from newbie ok", newbie, live, 1, false, nil},
		{"downvote from trusted ok", trusted, live, -1, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkVoteEligibility(tt.voter, tt.target, tt.value, tt.alreadyVoted, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

// Anonymous callers learn nothing about the target: the auth failure
// must win even when the target is missing or deleted.
func TestEligibilityOrderHidesTargetState(t *testing.T) {
	now := time.Now()
	deletedAt := now.Add(-time.Minute)
	dead := &models.Post{AuthorID: uintp(9), CreatedAt: now.Add(-time.Hour), DeletedAt: &deletedAt}

	assert.ErrorIs(t, checkVoteEligibility(nil, nil, 1, false, now), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, checkVoteEligibility(nil, dead, 1, false, now), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, checkVoteEligibility(nil, dead, -1, true, now), apperr.ErrUnauthenticated)
}

// Self-vote wins over the duplicate flag because it runs earlier.
func TestEligibilityFirstFailureWins(t *testing.T) {
	now := time.Now()
	old := now.Add(-90 * 24 * time.Hour)
	voter := &models.User{ID: 1, Username: strptr("alice"), Score: 50, CreatedAt: old}
	own := &models.Post{AuthorID: uintp(1), CreatedAt: now.Add(-time.Hour)}

	assert.ErrorIs(t, checkVoteEligibility(voter, own, 1, true, now), apperr.ErrSelfAction)
}

func TestDownvoteTrustBoundary(t *testing.T) {
	now := time.Now()
	justOldEnough := &models.User{
		ID: 1, Username: strptr("alice"),
		Score:     DownvoteMinScore,
		CreatedAt: now.Add(-DownvoteMinAccountAge),
	}
	target := &models.Post{AuthorID: uintp(9), CreatedAt: now.Add(-time.Hour)}

	assert.NoError(t, checkVoteEligibility(justOldEnough, target, -1, false, now))

	justOldEnough.Score = DownvoteMinScore - 1
	assert.ErrorIs(t, checkVoteEligibility(justOldEnough, target, -1, false, now), apperr.ErrInsufficientTrust)
}
