package services

import (
	"opensocial/internal/models"

	"gorm.io/gorm"
)

// Ledger reasons. Stored verbatim on every score log row.
const (
	ReasonPostUpvoted      = "post upvoted"
	ReasonPostDownvoted    = "post downvoted"
	ReasonCommentUpvoted   = "comment upvoted"
	ReasonCommentDownvoted = "comment downvoted"
	ReasonVoteRemoved      = "vote removed"
	ReasonDeletionPenalty  = "deletion penalty"
)

// Ledger applies karma deltas. Every change writes an audit row and
// increments the stored score in the same statement batch, so a user's
// score is always the sum of their log rows.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Adjust records a delta for a user inside the caller's transaction.
// The increment runs as SET score = score + delta, so concurrent
// adjustments never lose updates. A zero delta is a no-op.
func (l *Ledger) Adjust(tx *gorm.DB, userID uint, delta int, reason string) error {
	if delta == 0 {
		return nil
	}

	log := models.ScoreLog{
		UserID: userID,
		Delta:  delta,
		Reason: reason,
	}
	if err := tx.Create(&log).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).
		Error
}
