package services

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"opensocial/internal/logger"
)

// decayPeriod is how long it takes a post to shed one point of score
// from age alone.
const decayPeriod = 7 * 24 * time.Hour

// DecayedScore computes a post's ranking score: raw engagement minus a
// linear age penalty, floored at zero. One upvote, one bookmark and one
// comment are each worth a point; a week of age takes one away.
func DecayedScore(voteSum, bookmarks, comments int, age time.Duration) int {
	raw := float64(voteSum+bookmarks+comments) - age.Seconds()/decayPeriod.Seconds()
	if raw < 0 {
		return 0
	}
	return int(math.Round(raw))
}

// RankingService rewrites stored post scores in bulk. Scores only move
// when this runs; individual votes and bookmarks never touch them.
type RankingService struct {
	db *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{db: db}
}

// recomputeSQL applies DecayedScore to every post in one set-based
// statement, so a run is atomic and never observes half-updated scores.
// Tombstones decay like everything else; they still appear in listings.
const recomputeSQL = `
WITH stats AS (
	SELECT p.id,
		COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.post_id = p.id), 0) AS vote_sum,
		(SELECT COUNT(*) FROM bookmarks b WHERE b.post_id = p.id) AS bookmark_count,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p
)
UPDATE posts
SET score = GREATEST(
	stats.vote_sum + stats.bookmark_count + stats.comment_count
		- EXTRACT(EPOCH FROM AGE(NOW(), posts.created_at)) / (7 * 86400.0),
	0
)::int
FROM stats
WHERE posts.id = stats.id
`

// RecomputeAllScores runs the decay pass and returns how many posts
// were touched.
func (s *RankingService) RecomputeAllScores(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Exec(recomputeSQL)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// StartScheduled runs the decay pass once a day at 03:00 server time,
// in addition to whatever the cron endpoint triggers. Returns
// immediately; the loop stops when ctx is cancelled.
func (s *RankingService) StartScheduled(ctx context.Context) {
	go func() {
		log := logger.Get()
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if !now.Before(next) {
				next = next.Add(24 * time.Hour)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
			}

			n, err := s.RecomputeAllScores(ctx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled score recompute failed")
				continue
			}
			log.Info().Int64("posts", n).Msg("scheduled score recompute finished")
		}
	}()
}
