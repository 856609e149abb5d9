package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
	"opensocial/internal/utils"
)

type UserService struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
}

func NewUserService(db *gorm.DB, limiter *ratelimit.Limiter) *UserService {
	return &UserService{db: db, limiter: limiter}
}

// Signup creates an account from email and password. The account starts
// without a username and cannot act until Register claims one. Emails of
// recently deleted accounts sit out a cooldown first.
func (s *UserService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	var deleted models.DeletedEmail
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&deleted).Error
	if err == nil && time.Since(deleted.LastDeletedAt) < AccountDeletionCooldown {
		return nil, apperr.ErrCooldownPeriod
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:       email,
		Password:    string(hash),
		LastLoginAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials. Attempts are limited per client IP so a
// single address cannot brute-force passwords.
func (s *UserService) Login(ctx context.Context, email, password, clientIP string) (*models.User, error) {
	if err := s.limiter.Allow(ctx, ratelimit.ActionLogin, clientIP); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.ErrUnauthenticated
	}

	if err := s.db.WithContext(ctx).Model(&user).
		UpdateColumn("last_login_at", time.Now()).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Register claims a username for a fresh account, completing
// registration. Usernames are claimed exactly once and never change.
func (s *UserService) Register(ctx context.Context, user *models.User, username string) (*models.User, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if user.IsRegistered() {
		return nil, apperr.ErrAlreadyRegistered
	}
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}

	// Case-insensitive courtesy check; the unique index still decides
	// exact duplicates under concurrency.
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", username).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.ErrUsernameTaken
	}

	if err := s.db.WithContext(ctx).Model(user).Update("username", username).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrUsernameTaken
		}
		return nil, err
	}
	user.Username = &username
	return user, nil
}

// UpdateProfile sets the display name and bio.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, name, bio string) (*models.User, error) {
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !user.IsRegistered() {
		return nil, apperr.ErrUnregistered
	}
	if err := utils.ValidateProfile(name, bio); err != nil {
		return nil, err
	}

	// Nothing changed: skip the limiter and the timestamp bump.
	if user.Name == name && user.Bio == bio {
		return user, nil
	}

	if err := s.limiter.Allow(ctx, ratelimit.ActionProfileEdit, itoa(user.ID)); err != nil {
		return nil, err
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"name":            name,
		"bio":             bio,
		"last_updated_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID loads a user by primary key.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername loads a public profile.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the user row. Posts and comments survive with
// their author reference cleared; votes, bookmarks and score logs go
// with the account. The email lands on the cooldown list so it cannot
// re-register immediately.
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User) error {
	if user == nil {
		return apperr.ErrUnauthenticated
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deleted models.DeletedEmail
		err := tx.Where("email = ?", user.Email).First(&deleted).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			deleted = models.DeletedEmail{
				Email:         user.Email,
				DeleteCount:   1,
				LastDeletedAt: now,
			}
			if err := tx.Create(&deleted).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&deleted).Updates(map[string]interface{}{
				"delete_count":    gorm.Expr("delete_count + 1"),
				"last_deleted_at": now,
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.ScoreLog{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", user.ID).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PostHistory{}).Where("author_id = ?", user.ID).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CommentHistory{}).Where("author_id = ?", user.ID).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
}
