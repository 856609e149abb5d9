package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

func TestCommentEditLimit(t *testing.T) {
	db, posts, comments, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")

	post, err := posts.Create(ctx, author, "an original title", "", "ask me anything here", models.CategoryAsk)
	require.NoError(t, err)
	comment, err := comments.Create(ctx, commenter, post.Pid, "", "revision zero of this comment body")
	require.NoError(t, err)

	for i := 1; i <= CommentEditLimit; i++ {
		_, err := comments.Edit(ctx, commenter, comment.Cid,
			fmt.Sprintf("revision %d of this comment body", i))
		require.NoError(t, err)
	}

	_, err = comments.Edit(ctx, commenter, comment.Cid, "one revision over the snapshot limit")
	require.ErrorIs(t, err, apperr.ErrEditLimit)

	var count int64
	require.NoError(t, db.Model(&models.CommentHistory{}).
		Where("original_comment_id = ?", comment.ID).Count(&count).Error)
	assert.EqualValues(t, CommentEditLimit, count)
}

// A replied-to comment becomes a tombstone so the thread keeps its
// shape; a leaf comment disappears entirely.
func TestCommentDeleteKeepsThreadShape(t *testing.T) {
	db, posts, comments, _, _ := newTestServices(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")
	replier := createTestUser(t, db, "replier")

	post, err := posts.Create(ctx, author, "an original title", "", "ask me anything here", models.CategoryAsk)
	require.NoError(t, err)

	parent, err := comments.Create(ctx, commenter, post.Pid, "", "a parent comment somebody answered")
	require.NoError(t, err)
	_, err = comments.Create(ctx, replier, post.Pid, parent.Cid, "a reply long enough to pass validation")
	require.NoError(t, err)

	leaf, err := comments.Create(ctx, commenter, post.Pid, "", "a leaf comment nobody touched at all")
	require.NoError(t, err)

	require.NoError(t, comments.Delete(ctx, commenter, parent.Cid))
	var stored models.Comment
	require.NoError(t, db.First(&stored, parent.ID).Error)
	assert.NotNil(t, stored.DeletedAt)

	require.NoError(t, comments.Delete(ctx, commenter, leaf.Cid))
	err = db.First(&models.Comment{}, leaf.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
