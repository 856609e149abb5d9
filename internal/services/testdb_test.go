package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"opensocial/internal/models"
	"opensocial/internal/ratelimit"
)

// openStore is a limiter store with no quota, so the storage paths can
// be exercised without burning through the real windows.
type openStore struct{}

func (openStore) Take(ctx context.Context, key string, cfg ratelimit.Config) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: true}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.PostHistory{},
		&models.Comment{}, &models.CommentHistory{},
		&models.Vote{}, &models.Bookmark{},
		&models.ScoreLog{}, &models.DeletedEmail{},
	))
	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *PostService, *CommentService, *VoteService, *BookmarkService) {
	t.Helper()
	db := setupTestDB(t)
	ledger := NewLedger()
	limiter := ratelimit.NewLimiter(openStore{})
	return db,
		NewPostService(db, ledger, limiter),
		NewCommentService(db, ledger, limiter),
		NewVoteService(db, ledger, limiter),
		NewBookmarkService(db, limiter)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: &username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func userScore(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u.Score
}

func ledgerSum(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var sum int64
	require.NoError(t, db.Model(&models.ScoreLog{}).
		Where("user_id = ?", id).
		Select("COALESCE(SUM(delta), 0)").Scan(&sum).Error)
	return int(sum)
}
