package services

import (
	"strconv"
	"time"
)

// Edit bounds. An item's edit count is the number of history snapshots
// it has accumulated.
const (
	PostEditLimit    = 5
	CommentEditLimit = 3
	TitleEditWindow  = time.Hour
)

// PageSize is the fixed page length for every listing.
const PageSize = 25

// AccountDeletionCooldown blocks re-registration of a deleted email.
const AccountDeletionCooldown = 30 * 24 * time.Hour

// deletionPenaltyWindow bounds how old an item can be for its removal
// to cost the author karma.
const deletionPenaltyWindow = 30 * 24 * time.Hour

// engagement summarizes how much the community has invested in an item.
// Counts are taken inside the deletion transaction so the branch
// decision and the delete see the same state.
type engagement struct {
	Comments  int
	Bookmarks int
	HasVotes  bool
	VoteSum   int
}

// shouldTombstone decides between soft and hard deletion. Any community
// engagement means the row must survive as a tombstone; otherwise the
// item vanishes entirely.
func shouldTombstone(e engagement) bool {
	return e.Comments > 0 || e.Bookmarks > 0 || e.HasVotes
}

// deletionPenalty is the karma cost of deleting an item: authors give
// back the votes a young item earned. Old items and items at or below
// zero are free to delete.
func deletionPenalty(voteSum int, age time.Duration) int {
	if age <= deletionPenaltyWindow && voteSum > 0 {
		return -voteSum
	}
	return 0
}

// itoa renders a user id as a rate limiter subject key.
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
