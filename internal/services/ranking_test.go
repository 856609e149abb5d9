package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecayedScore(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name      string
		voteSum   int
		bookmarks int
		comments  int
		age       time.Duration
		want      int
	}{
		{"fresh post no engagement", 0, 0, 0, 0, 0},
		{"three upvotes after a week", 3, 0, 0, 7 * day, 2},
		{"engagement sums", 2, 1, 3, 0, 6},
		{"floors at zero", 1, 0, 0, 30 * day, 0},
		{"negative vote sum floors", -5, 0, 0, 0, 0},
		{"bookmarks offset age", 0, 4, 0, 14 * day, 2},
		{"half period rounds", 2, 0, 0, 7 * day / 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecayedScore(tt.voteSum, tt.bookmarks, tt.comments, tt.age))
		})
	}
}

// A post never ranks higher by getting older, all else equal.
func TestDecayedScoreMonotoneInAge(t *testing.T) {
	day := 24 * time.Hour
	prev := DecayedScore(10, 2, 5, 0)
	for d := 1; d <= 180; d++ {
		cur := DecayedScore(10, 2, 5, time.Duration(d)*day)
		assert.LessOrEqual(t, cur, prev, "day %d", d)
		prev = cur
	}
	assert.Equal(t, 0, prev)
}

// Tombstoned posts still appear in listings, so their scores must keep
// decaying: the bulk statement may not filter on deletion state.
func TestRecomputeStatementCoversTombstones(t *testing.T) {
	assert.NotContains(t, recomputeSQL, "deleted_at")
}

// More engagement never ranks lower, all else equal.
func TestDecayedScoreMonotoneInEngagement(t *testing.T) {
	age := 10 * 24 * time.Hour
	prev := DecayedScore(0, 0, 0, age)
	for v := 1; v <= 50; v++ {
		cur := DecayedScore(v, 0, 0, age)
		assert.GreaterOrEqual(t, cur, prev, "votes %d", v)
		prev = cur
	}
}
