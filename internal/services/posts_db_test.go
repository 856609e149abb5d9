package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

func TestPostEditSnapshotsPreviousVersion(t *testing.T) {
	db, posts, _, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")

	post, err := posts.Create(ctx, author, "an original title", "", "first draft", models.CategoryGeneral)
	require.NoError(t, err)

	_, err = posts.Edit(ctx, author, post.Pid, "an original title", "", "second draft", models.CategoryGeneral)
	require.NoError(t, err)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "second draft", stored.Content)
	assert.NotNil(t, stored.LastUpdatedAt)

	var history []models.PostHistory
	require.NoError(t, db.Where("original_post_id = ?", post.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "first draft", history[0].Content)
	assert.Equal(t, "an original title", history[0].Title)
}

func TestPostEditLimit(t *testing.T) {
	db, posts, _, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")

	post, err := posts.Create(ctx, author, "an original title", "", "revision 0", models.CategoryGeneral)
	require.NoError(t, err)

	for i := 1; i <= PostEditLimit; i++ {
		_, err := posts.Edit(ctx, author, post.Pid, "an original title", "",
			fmt.Sprintf("revision %d", i), models.CategoryGeneral)
		require.NoError(t, err)
	}

	_, err = posts.Edit(ctx, author, post.Pid, "an original title", "", "one revision too many", models.CategoryGeneral)
	require.ErrorIs(t, err, apperr.ErrEditLimit)

	var count int64
	require.NoError(t, db.Model(&models.PostHistory{}).
		Where("original_post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, PostEditLimit, count)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, fmt.Sprintf("revision %d", PostEditLimit), stored.Content)
}

// A submission that normalizes to the stored values succeeds without
// writing a snapshot or touching last_updated_at.
func TestPostEditNoOpConsumesNothing(t *testing.T) {
	db, posts, _, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")

	post, err := posts.Create(ctx, author, "an original title", "", "the same words", models.CategoryGeneral)
	require.NoError(t, err)

	_, err = posts.Edit(ctx, author, post.Pid, "  an   original title ", "", "the same words\r\n", models.CategoryGeneral)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PostHistory{}).
		Where("original_post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Nil(t, stored.LastUpdatedAt)
}

func TestPostDeletePurgesUntouched(t *testing.T) {
	db, posts, _, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")

	post, err := posts.Create(ctx, author, "an original title", "", "nobody saw this", models.CategoryGeneral)
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, author, post.Pid))

	err = db.First(&models.Post{}, post.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostDeleteTombstonesEngaged(t *testing.T) {
	db, posts, comments, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")

	post, err := posts.Create(ctx, author, "an original title", "", "worth replying to", models.CategoryGeneral)
	require.NoError(t, err)
	_, err = comments.Create(ctx, commenter, post.Pid, "", "a reply long enough to pass validation")
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, author, post.Pid))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.NotNil(t, stored.DeletedAt)
}

// Deleting a freshly upvoted post gives the votes back; afterwards the
// score still equals the sum of the ledger rows.
func TestPostDeletePenaltyMatchesLedger(t *testing.T) {
	db, posts, _, votes, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")

	post, err := posts.Create(ctx, author, "an original title", "", "briefly popular", models.CategoryGeneral)
	require.NoError(t, err)
	require.NoError(t, votes.VotePost(ctx, voter, post.Pid, 1))
	require.Equal(t, 1, userScore(t, db, author.ID))

	require.NoError(t, posts.Delete(ctx, author, post.Pid))

	assert.Equal(t, 0, userScore(t, db, author.ID))
	assert.Equal(t, userScore(t, db, author.ID), ledgerSum(t, db, author.ID))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.NotNil(t, stored.DeletedAt)
}

// Two requests deleting the same post must charge the penalty once: the
// second one finds no live row and its transaction rolls back whole.
func TestPostDeleteStaleRowRollsBackPenalty(t *testing.T) {
	db, posts, _, votes, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")

	post, err := posts.Create(ctx, author, "an original title", "", "briefly popular", models.CategoryGeneral)
	require.NoError(t, err)
	require.NoError(t, votes.VotePost(ctx, voter, post.Pid, 1))

	var stale models.Post
	require.NoError(t, db.First(&stale, post.ID).Error)

	// The other request wins between our load and our transaction.
	require.NoError(t, db.Model(&models.Post{}).
		Where("id = ?", post.ID).Update("deleted_at", time.Now()).Error)

	err = db.Transaction(func(tx *gorm.DB) error {
		return posts.deleteTx(tx, &stale, author.ID)
	})
	require.ErrorIs(t, err, apperr.ErrAlreadyDeleted)

	assert.Equal(t, 1, userScore(t, db, author.ID))

	var penalties int64
	require.NoError(t, db.Model(&models.ScoreLog{}).
		Where("user_id = ? AND reason = ?", author.ID, ReasonDeletionPenalty).
		Count(&penalties).Error)
	assert.Zero(t, penalties)
}
