package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
)

type BookmarkService struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
}

func NewBookmarkService(db *gorm.DB, limiter *ratelimit.Limiter) *BookmarkService {
	return &BookmarkService{db: db, limiter: limiter}
}

// Add bookmarks a live post for the caller. Own posts are fine and no
// karma moves; the unique index resolves races on double-submit.
func (s *BookmarkService) Add(ctx context.Context, user *models.User, pid string) error {
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
	if post.DeletedAt != nil {
		return apperr.ErrTargetDeleted
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionBookmark, itoa(user.ID)); err != nil {
		return err
	}

	bookmark := models.Bookmark{
		UserID: user.ID,
		PostID: post.ID,
	}
	if err := s.db.WithContext(ctx).Create(&bookmark).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Remove deletes the caller's bookmark on a post.
func (s *BookmarkService) Remove(ctx context.Context, user *models.User, pid string) error {
	if user == nil {
		return apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return apperr.ErrUnregistered
	}

	var post models.Post
	err := s.db.WithContext(ctx).Select("id").Where("pid = ?", pid).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListForUser returns one page of the user's bookmarked posts, most
// recently saved first. Tombstoned posts stay listed; the bookmark is
// part of why the row survived.
func (s *BookmarkService) ListForUser(ctx context.Context, user *models.User, page int) ([]*models.Post, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}

	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(PageSize).Offset((page - 1) * PageSize).
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	if len(bookmarks) == 0 {
		return []*models.Post{}, nil
	}

	ids := make([]uint, len(bookmarks))
	for i, b := range bookmarks {
		ids[i] = b.PostID
	}

	var posts []*models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}

	// Restore bookmark order.
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	if err := loadPostStats(ctx, s.db, ordered, user); err != nil {
		return nil, err
	}
	return ordered, nil
}
