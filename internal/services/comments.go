package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
	"opensocial/internal/utils"
)

type CommentService struct {
	db      *gorm.DB
	ledger  *Ledger
	limiter *ratelimit.Limiter
}

func NewCommentService(db *gorm.DB, ledger *Ledger, limiter *ratelimit.Limiter) *CommentService {
	return &CommentService{db: db, ledger: ledger, limiter: limiter}
}

// Create adds a comment to a live post. parentCid, when set, nests the
// comment under an existing live comment on the same post.
func (s *CommentService) Create(ctx context.Context, user *models.User, postPid, parentCid, content string) (*models.Comment, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return nil, apperr.ErrUnregistered
	}

	content = utils.NormalizeContent(content)
	if err := utils.ValidateComment(content); err != nil {
		return nil, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Where("pid = ?", postPid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if post.DeletedAt != nil {
		return nil, apperr.ErrTargetDeleted
	}

	var parentID *uint
	if parentCid != "" {
		var parent models.Comment
		err := s.db.WithContext(ctx).Where("cid = ? AND post_id = ?", parentCid, post.ID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.DeletedAt != nil {
			return nil, apperr.ErrTargetDeleted
		}
		parentID = &parent.ID
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionComment, itoa(user.ID)); err != nil {
		return nil, err
	}

	comment := models.Comment{
		Cid:      utils.RandStringBytesMaskImpr(8),
		PostID:   post.ID,
		ParentID: parentID,
		AuthorID: &user.ID,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForPost returns every comment on a post with vote stats attached.
// Tombstoned comments stay in the thread so replies keep their place;
// the handler blanks their content. Order: live before deleted, the post
// author's own comments first, then vote sum, reply count and age.
func (s *CommentService) ListForPost(ctx context.Context, postPid string, viewer *models.User) ([]*models.Comment, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Select("id, author_id").Where("pid = ?", postPid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err = s.db.WithContext(ctx).Preload("Author").Preload("Parent").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	if err := s.loadStats(ctx, comments, viewer); err != nil {
		return nil, err
	}

	sortThread(comments, post.AuthorID)
	return comments, nil
}

// sortThread orders a flat comment list for display.
func sortThread(comments []*models.Comment, postAuthorID *uint) {
	byPostAuthor := func(c *models.Comment) bool {
		return postAuthorID != nil && c.AuthorID != nil && *c.AuthorID == *postAuthorID
	}
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if (a.DeletedAt == nil) != (b.DeletedAt == nil) {
			return a.DeletedAt == nil
		}
		if byPostAuthor(a) != byPostAuthor(b) {
			return byPostAuthor(a)
		}
		if a.VoteSum != b.VoteSum {
			return a.VoteSum > b.VoteSum
		}
		if a.ReplyCount != b.ReplyCount {
			return a.ReplyCount > b.ReplyCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// ListByAuthor returns one page of a user's comments, newest first. Only
// the author themselves sees their tombstoned comments.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID uint, page int, viewer *models.User) ([]*models.Comment, error) {
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Preload("Author").Where("author_id = ?", authorID)
	if viewer == nil || viewer.ID != authorID {
		q = q.Where("deleted_at IS NULL")
	}

	var comments []*models.Comment
	err := q.Order("created_at DESC").
		Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	if err := s.loadStats(ctx, comments, viewer); err != nil {
		return nil, err
	}
	return comments, nil
}

// Edit rewrites a comment's content. Same rules as post edits with a
// tighter snapshot limit and no pinned fields.
func (s *CommentService) Edit(ctx context.Context, user *models.User, cid, content string) (*models.Comment, error) {
	content = utils.NormalizeContent(content)
	if err := utils.ValidateComment(content); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkOwn(user, &comment); err != nil {
		return nil, err
	}

	if comment.Content == content {
		return &comment, nil
	}

	var editCount int64
	if err := s.db.WithContext(ctx).Model(&models.CommentHistory{}).
		Where("original_comment_id = ?", comment.ID).Count(&editCount).Error; err != nil {
		return nil, err
	}
	if editCount >= CommentEditLimit {
		return nil, apperr.ErrEditLimit
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionComment, itoa(user.ID)); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot := models.CommentHistory{
			OriginalCommentID: comment.ID,
			AuthorID:          comment.AuthorID,
			Content:           comment.Content,
			LastEditedAt:      now,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		return tx.Model(&comment).Updates(map[string]interface{}{
			"content":         content,
			"last_updated_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes an author's comment. A comment with replies or votes
// becomes a tombstone so the thread keeps its shape; otherwise the row
// goes away. The same young-item karma penalty as posts applies.
func (s *CommentService) Delete(ctx context.Context, user *models.User, cid string) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := checkOwn(user, &comment); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteTx(tx, &comment, user.ID)
	})
}

// deleteTx runs the deletion inside tx. Same shape as post deletion:
// the final write matches only a still-live row, and zero matched rows
// rolls back the penalty along with everything else.
func (s *CommentService) deleteTx(tx *gorm.DB, comment *models.Comment, actorID uint) error {
	e, err := commentEngagement(tx, comment.ID)
	if err != nil {
		return err
	}

	if penalty := deletionPenalty(e.VoteSum, time.Since(comment.CreatedAt)); penalty != 0 {
		if err := s.ledger.Adjust(tx, actorID, penalty, ReasonDeletionPenalty); err != nil {
			return err
		}
	}

	var res *gorm.DB
	if shouldTombstone(e) {
		res = tx.Model(&models.Comment{}).
			Where("id = ? AND deleted_at IS NULL", comment.ID).
			Update("deleted_at", time.Now())
	} else {
		res = tx.Where("deleted_at IS NULL").Delete(&models.Comment{}, comment.ID)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrAlreadyDeleted
	}
	return nil
}

// History lists a comment's edit snapshots, newest first.
func (s *CommentService) History(ctx context.Context, cid string) ([]models.CommentHistory, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Select("id").Where("cid = ?", cid).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var history []models.CommentHistory
	err = s.db.WithContext(ctx).
		Where("original_comment_id = ?", comment.ID).
		Order("last_edited_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// commentEngagement counts replies and votes on a comment. Comments
// cannot be bookmarked.
func commentEngagement(tx *gorm.DB, commentID uint) (engagement, error) {
	var e engagement

	var replies int64
	if err := tx.Model(&models.Comment{}).Where("parent_id = ?", commentID).Count(&replies).Error; err != nil {
		return e, err
	}
	var votes int64
	if err := tx.Model(&models.Vote{}).Where("comment_id = ?", commentID).Count(&votes).Error; err != nil {
		return e, err
	}
	var voteSum int64
	if err := tx.Model(&models.Vote{}).Where("comment_id = ?", commentID).
		Select("COALESCE(SUM(value), 0)").Scan(&voteSum).Error; err != nil {
		return e, err
	}

	e.Comments = int(replies)
	e.HasVotes = votes > 0
	e.VoteSum = int(voteSum)
	return e, nil
}

func (s *CommentService) loadStats(ctx context.Context, comments []*models.Comment, viewer *models.User) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, len(comments))
	byID := make(map[uint]*models.Comment, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	type row struct {
		CommentID uint
		N         int
	}

	var rows []row
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("parent_id AS comment_id, COUNT(*) AS n").
		Where("parent_id IN ?", ids).Group("parent_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		byID[r.CommentID].ReplyCount = r.N
	}

	rows = rows[:0]
	if err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Select("comment_id, COALESCE(SUM(value), 0) AS n").
		Where("comment_id IN ?", ids).Group("comment_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		byID[r.CommentID].VoteSum = r.N
	}

	if viewer == nil {
		return nil
	}

	var votes []models.Vote
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", viewer.ID, ids).
		Find(&votes).Error; err != nil {
		return err
	}
	for _, v := range votes {
		if v.CommentID != nil {
			byID[*v.CommentID].UserVote = v.Value
		}
	}
	return nil
}
