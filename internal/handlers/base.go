package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opensocial/internal/apperr"
	"opensocial/internal/logger"
	"opensocial/internal/middleware"
	"opensocial/internal/models"
	"opensocial/internal/services"
)

// respondError translates business errors to HTTP. Anything unrecognized
// is logged and reported as a generic storage failure.
func respondError(c *gin.Context, err error) {
	var v *apperr.ValidationError
	if errors.As(err, &v) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": v.Fields,
		})
		return
	}

	var rl *apperr.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rl.Error()})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnregistered),
		errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrSelfAction),
		errors.Is(err, apperr.ErrInsufficientTrust):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrTargetDeleted),
		errors.Is(err, apperr.ErrAuthorUnknown),
		errors.Is(err, apperr.ErrAlreadyVoted),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrAlreadyDeleted),
		errors.Is(err, apperr.ErrEditLimit),
		errors.Is(err, apperr.ErrTitlePinned),
		errors.Is(err, apperr.ErrCooldownPeriod),
		errors.Is(err, apperr.ErrUsernameTaken),
		errors.Is(err, apperr.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Get().Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUser returns the session user loaded by middleware, or nil.
func currentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(middleware.CheckUserKey); exists {
		return v.(*models.User)
	}
	return nil
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// postJSON renders a post for API responses. Tombstones keep their
// identity and engagement but lose everything the author wrote.
func postJSON(p *models.Post) gin.H {
	out := gin.H{
		"pid":            p.Pid,
		"category":       p.Category,
		"score":          p.Score,
		"created_at":     p.CreatedAt,
		"comment_count":  p.CommentCount,
		"bookmark_count": p.BookmarkCount,
		"vote_sum":       p.VoteSum,
		"deleted":        p.DeletedAt != nil,
	}
	if p.DeletedAt != nil {
		out["title"] = "[deleted]"
		return out
	}

	out["title"] = p.Title
	out["url"] = p.URL
	out["content"] = p.Content
	out["last_updated_at"] = p.LastUpdatedAt
	out["user_vote"] = p.UserVote
	out["bookmarked"] = p.Bookmarked
	if p.Author != nil && p.Author.Username != nil {
		out["author"] = *p.Author.Username
	}
	return out
}

// commentJSON renders a comment, blanking tombstones the same way.
func commentJSON(cm *models.Comment) gin.H {
	out := gin.H{
		"cid":         cm.Cid,
		"created_at":  cm.CreatedAt,
		"reply_count": cm.ReplyCount,
		"vote_sum":    cm.VoteSum,
		"deleted":     cm.DeletedAt != nil,
	}
	if cm.ParentID != nil && cm.Parent != nil {
		out["parent_cid"] = cm.Parent.Cid
	}
	if cm.DeletedAt != nil {
		out["content"] = "[deleted]"
		return out
	}

	out["content"] = cm.Content
	out["last_updated_at"] = cm.LastUpdatedAt
	out["user_vote"] = cm.UserVote
	if cm.Author != nil && cm.Author.Username != nil {
		out["author"] = *cm.Author.Username
	}
	return out
}

// listBody wraps a page of posts. A full page means there may be more.
func listBody(posts []*models.Post, page int) gin.H {
	return gin.H{
		"posts":    postListJSON(posts),
		"page":     page,
		"has_next": len(posts) == services.PageSize,
	}
}

func postListJSON(posts []*models.Post) []gin.H {
	out := make([]gin.H, len(posts))
	for i, p := range posts {
		out[i] = postJSON(p)
	}
	return out
}

func commentListJSON(comments []*models.Comment) []gin.H {
	out := make([]gin.H, len(comments))
	for i, cm := range comments {
		out[i] = commentJSON(cm)
	}
	return out
}
