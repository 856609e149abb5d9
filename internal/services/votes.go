package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
)

type VoteService struct {
	db      *gorm.DB
	ledger  *Ledger
	limiter *ratelimit.Limiter
}

func NewVoteService(db *gorm.DB, ledger *Ledger, limiter *ratelimit.Limiter) *VoteService {
	return &VoteService{db: db, ledger: ledger, limiter: limiter}
}

// VotePost records a +1/-1 on a post and credits the author in the same
// transaction. A duplicate-key error from the vote insert is reported as
// an already-voted conflict, whatever the earlier existence check said.
func (s *VoteService) VotePost(ctx context.Context, user *models.User, pid string, value int) error {
	if err := validateVoteValue(value); err != nil {
		return err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&post).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var target voteTarget
	if err == nil {
		target = &post
	}

	alreadyVoted := false
	if user != nil && target != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Vote{}).
			Where("user_id = ? AND post_id = ?", user.ID, post.ID).
			Count(&n).Error; err != nil {
			return err
		}
		alreadyVoted = n > 0
	}

	if err := checkVoteEligibility(user, target, value, alreadyVoted, time.Now()); err != nil {
		return err
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionVote, itoa(user.ID)); err != nil {
		return err
	}

	reason := ReasonPostUpvoted
	if value < 0 {
		reason = ReasonPostDownvoted
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.Vote{
			UserID: user.ID,
			PostID: &post.ID,
			Value:  value,
		}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrAlreadyVoted
			}
			return err
		}
		return s.ledger.Adjust(tx, *post.AuthorID, value, reason)
	})
}

// VoteComment is VotePost for comments.
func (s *VoteService) VoteComment(ctx context.Context, user *models.User, cid string, value int) error {
	if err := validateVoteValue(value); err != nil {
		return err
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&comment).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var target voteTarget
	if err == nil {
		target = &comment
	}

	alreadyVoted := false
	if user != nil && target != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Vote{}).
			Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).
			Count(&n).Error; err != nil {
			return err
		}
		alreadyVoted = n > 0
	}

	if err := checkVoteEligibility(user, target, value, alreadyVoted, time.Now()); err != nil {
		return err
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionVote, itoa(user.ID)); err != nil {
		return err
	}

	reason := ReasonCommentUpvoted
	if value < 0 {
		reason = ReasonCommentDownvoted
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.Vote{
			UserID:    user.ID,
			CommentID: &comment.ID,
			Value:     value,
		}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrAlreadyVoted
			}
			return err
		}
		return s.ledger.Adjust(tx, *comment.AuthorID, value, reason)
	})
}

// UnvotePost withdraws the caller's vote and reverses the author's
// credit. If the author account is gone the delta has nowhere to go and
// only the vote row is removed.
func (s *VoteService) UnvotePost(ctx context.Context, user *models.User, pid string) error {
	if user == nil {
		return apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return apperr.ErrUnregistered
	}

	var post models.Post
	err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}

	var vote models.Vote
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.removeVote(tx, &vote, post.AuthorID)
	})
}

// UnvoteComment is UnvotePost for comments.
func (s *VoteService) UnvoteComment(ctx context.Context, user *models.User, cid string) error {
	if user == nil {
		return apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return apperr.ErrUnregistered
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}

	var vote models.Vote
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.removeVote(tx, &vote, comment.AuthorID)
	})
}

// removeVote deletes a loaded vote row and reverses the author's credit.
// The delete doubles as the concurrency guard: when another request got
// to the row first, zero rows match and no delta is applied.
func (s *VoteService) removeVote(tx *gorm.DB, vote *models.Vote, authorID *uint) error {
	res := tx.Delete(vote)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	if authorID == nil {
		return nil
	}
	return s.ledger.Adjust(tx, *authorID, -vote.Value, ReasonVoteRemoved)
}

// ListVotedPosts returns one page of posts the user has voted on, most
// recent vote first. Only the voter sees this list.
func (s *VoteService) ListVotedPosts(ctx context.Context, user *models.User, page int) ([]*models.Post, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}

	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id IS NOT NULL", user.ID).
		Order("created_at DESC").
		Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return []*models.Post{}, nil
	}

	ids := make([]uint, len(votes))
	for i, v := range votes {
		ids[i] = *v.PostID
	}

	var posts []*models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(posts))
	for _, v := range votes {
		if p, ok := byID[*v.PostID]; ok {
			ordered = append(ordered, p)
		}
	}

	if err := loadPostStats(ctx, s.db, ordered, user); err != nil {
		return nil, err
	}
	return ordered, nil
}

func validateVoteValue(value int) error {
	if value != 1 && value != -1 {
		v := &apperr.ValidationError{}
		v.Add("value", "must be 1 or -1")
		return v.Err()
	}
	return nil
}
