package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldTombstone(t *testing.T) {
	tests := []struct {
		name string
		e    engagement
		want bool
	}{
		{"untouched", engagement{}, false},
		{"has comments", engagement{Comments: 1}, true},
		{"has bookmarks", engagement{Bookmarks: 2}, true},
		{"has votes", engagement{HasVotes: true}, true},
		{"votes cancel out but exist", engagement{HasVotes: true, VoteSum: 0}, true},
		{"everything", engagement{Comments: 3, Bookmarks: 1, HasVotes: true, VoteSum: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldTombstone(tt.e))
		})
	}
}

func TestDeletionPenalty(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name    string
		voteSum int
		age     time.Duration
		want    int
	}{
		{"young and positive", 5, 10 * day, -5},
		{"young at window edge", 5, 30 * day, -5},
		{"old and positive", 5, 31 * day, 0},
		{"young but zero", 0, 10 * day, 0},
		{"young but negative", -3, 10 * day, 0},
		{"brand new single vote", 1, time.Minute, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deletionPenalty(tt.voteSum, tt.age))
		})
	}
}
