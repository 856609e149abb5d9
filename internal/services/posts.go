package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
	"opensocial/internal/utils"
)

type PostService struct {
	db      *gorm.DB
	ledger  *Ledger
	limiter *ratelimit.Limiter
}

func NewPostService(db *gorm.DB, ledger *Ledger, limiter *ratelimit.Limiter) *PostService {
	return &PostService{db: db, ledger: ledger, limiter: limiter}
}

// Create validates and stores a new post.
func (s *PostService) Create(ctx context.Context, user *models.User, title, url, content, category string) (*models.Post, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return nil, apperr.ErrUnregistered
	}

	title = utils.CollapseWhitespace(title)
	content = utils.NormalizeContent(content)
	if err := utils.ValidatePost(title, url, content, category); err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionPost, itoa(user.ID)); err != nil {
		return nil, err
	}

	post := models.Post{
		Pid:      utils.RandStringBytesMaskImpr(8),
		AuthorID: &user.ID,
		Title:    title,
		URL:      url,
		Content:  content,
		Category: category,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByPid loads a post with its author and engagement counts. Tombstoned
// posts are returned; the handler decides how much of them to show.
func (s *PostService) GetByPid(ctx context.Context, pid string, viewer *models.User) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := loadPostStats(ctx, s.db, []*models.Post{&post}, viewer); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns one page of posts. sort is "new" or "top"; anything else
// falls back to "new". search matches title words. Tombstoned and
// author-less posts stay listed but always sort after live ones.
func (s *PostService) List(ctx context.Context, category, sort, search string, page int, viewer *models.User) ([]*models.Post, error) {
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Preload("Author")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	for _, word := range strings.Fields(search) {
		q = q.Where("title ILIKE ?", "%"+word+"%")
	}
	switch sort {
	case "top":
		q = q.Order("(deleted_at IS NOT NULL), (author_id IS NULL), score DESC, created_at DESC")
	default:
		q = q.Order("(deleted_at IS NOT NULL), (author_id IS NULL), created_at DESC")
	}

	var posts []*models.Post
	if err := q.Limit(PageSize).Offset((page - 1) * PageSize).Find(&posts).Error; err != nil {
		return nil, err
	}

	if err := loadPostStats(ctx, s.db, posts, viewer); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns one page of a user's posts, newest first. Only
// the author themselves sees their tombstoned posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, page int, viewer *models.User) ([]*models.Post, error) {
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Preload("Author").Where("author_id = ?", authorID)
	if viewer == nil || viewer.ID != authorID {
		q = q.Where("deleted_at IS NULL")
	}

	var posts []*models.Post
	err := q.Order("created_at DESC").
		Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	if err := loadPostStats(ctx, s.db, posts, viewer); err != nil {
		return nil, err
	}
	return posts, nil
}

// Edit applies an author's changes to a post. A submission identical to
// the stored values after normalization succeeds without consuming an
// edit. Each real edit snapshots the previous values; after
// PostEditLimit snapshots the post is frozen, and the title alone
// freezes once the post is older than TitleEditWindow.
func (s *PostService) Edit(ctx context.Context, user *models.User, pid, title, url, content, category string) (*models.Post, error) {
	title = utils.CollapseWhitespace(title)
	content = utils.NormalizeContent(content)
	if err := utils.ValidatePost(title, url, content, category); err != nil {
		return nil, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkOwn(user, &post); err != nil {
		return nil, err
	}

	// Nothing changed: report success without consuming an edit.
	if post.Title == title && post.URL == url && post.Content == content && post.Category == category {
		return &post, nil
	}

	var editCount int64
	if err := s.db.WithContext(ctx).Model(&models.PostHistory{}).
		Where("original_post_id = ?", post.ID).Count(&editCount).Error; err != nil {
		return nil, err
	}
	if editCount >= PostEditLimit {
		return nil, apperr.ErrEditLimit
	}

	now := time.Now()
	if post.Title != title && now.Sub(post.CreatedAt) >= TitleEditWindow {
		return nil, apperr.ErrTitlePinned
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionPost, itoa(user.ID)); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot := models.PostHistory{
			OriginalPostID: post.ID,
			AuthorID:       post.AuthorID,
			Title:          post.Title,
			URL:            post.URL,
			Content:        post.Content,
			Category:       post.Category,
			LastEditedAt:   now,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		return tx.Model(&post).Updates(map[string]interface{}{
			"title":           title,
			"url":             url,
			"content":         content,
			"category":        category,
			"last_updated_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes an author's post. The engagement counts, the karma
// penalty and the removal itself all happen in one transaction: a post
// others have invested in becomes a tombstone, an untouched post is
// deleted outright.
func (s *PostService) Delete(ctx context.Context, user *models.User, pid string) error {
	var post models.Post
	err := s.db.WithContext(ctx).Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := checkOwn(user, &post); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteTx(tx, &post, user.ID)
	})
}

// deleteTx runs the deletion inside tx. Both the tombstone update and
// the hard delete match only a still-live row, so when a concurrent
// delete got there first zero rows match and the whole transaction,
// penalty included, rolls back.
func (s *PostService) deleteTx(tx *gorm.DB, post *models.Post, actorID uint) error {
	e, err := postEngagement(tx, post.ID)
	if err != nil {
		return err
	}

	if penalty := deletionPenalty(e.VoteSum, time.Since(post.CreatedAt)); penalty != 0 {
		if err := s.ledger.Adjust(tx, actorID, penalty, ReasonDeletionPenalty); err != nil {
			return err
		}
	}

	var res *gorm.DB
	if shouldTombstone(e) {
		res = tx.Model(&models.Post{}).
			Where("id = ? AND deleted_at IS NULL", post.ID).
			Update("deleted_at", time.Now())
	} else {
		res = tx.Where("deleted_at IS NULL").Delete(&models.Post{}, post.ID)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrAlreadyDeleted
	}
	return nil
}

// History lists a post's edit snapshots, newest first.
func (s *PostService) History(ctx context.Context, pid string) ([]models.PostHistory, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Select("id").Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var history []models.PostHistory
	err = s.db.WithContext(ctx).
		Where("original_post_id = ?", post.ID).
		Order("last_edited_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// postEngagement counts everything the community has attached to a post.
// Runs inside the deletion transaction.
func postEngagement(tx *gorm.DB, postID uint) (engagement, error) {
	var e engagement

	var comments int64
	if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments).Error; err != nil {
		return e, err
	}
	var bookmarks int64
	if err := tx.Model(&models.Bookmark{}).Where("post_id = ?", postID).Count(&bookmarks).Error; err != nil {
		return e, err
	}
	var votes int64
	if err := tx.Model(&models.Vote{}).Where("post_id = ?", postID).Count(&votes).Error; err != nil {
		return e, err
	}
	var voteSum int64
	if err := tx.Model(&models.Vote{}).Where("post_id = ?", postID).
		Select("COALESCE(SUM(value), 0)").Scan(&voteSum).Error; err != nil {
		return e, err
	}

	e.Comments = int(comments)
	e.Bookmarks = int(bookmarks)
	e.HasVotes = votes > 0
	e.VoteSum = int(voteSum)
	return e, nil
}

// loadPostStats fills the derived fields on a batch of posts with one
// grouped query per stat. Every listing that renders posts goes through
// it so the counts look the same everywhere.
func loadPostStats(ctx context.Context, db *gorm.DB, posts []*models.Post, viewer *models.User) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	type row struct {
		PostID uint
		N      int
	}

	var rows []row
	if err := db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		byID[r.PostID].CommentCount = r.N
	}

	rows = rows[:0]
	if err := db.WithContext(ctx).Model(&models.Bookmark{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		byID[r.PostID].BookmarkCount = r.N
	}

	rows = rows[:0]
	if err := db.WithContext(ctx).Model(&models.Vote{}).
		Select("post_id, COALESCE(SUM(value), 0) AS n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		byID[r.PostID].VoteSum = r.N
	}

	if viewer == nil {
		return nil
	}

	var votes []models.Vote
	if err := db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", viewer.ID, ids).
		Find(&votes).Error; err != nil {
		return err
	}
	for _, v := range votes {
		if v.PostID != nil {
			byID[*v.PostID].UserVote = v.Value
		}
	}

	var bookmarks []models.Bookmark
	if err := db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", viewer.ID, ids).
		Find(&bookmarks).Error; err != nil {
		return err
	}
	for _, b := range bookmarks {
		byID[b.PostID].Bookmarked = true
	}
	return nil
}
