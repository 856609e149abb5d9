package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"opensocial/internal/services"
)

type UserHandler struct {
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
}

func NewUserHandler(users *services.UserService, posts *services.PostService, comments *services.CommentService) *UserHandler {
	return &UserHandler{users: users, posts: posts, comments: comments}
}

// Profile serves a public profile by username.
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"username":   user.Username,
		"name":       user.Name,
		"bio":        user.Bio,
		"score":      user.Score,
		"created_at": user.CreatedAt,
	}})
}

// Posts serves a user's live posts.
func (h *UserHandler) Posts(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	page := pageParam(c)
	posts, err := h.posts.ListByAuthor(c.Request.Context(), user.ID, page, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(posts, page))
}

// Comments serves a user's comments.
func (h *UserHandler) Comments(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.comments.ListByAuthor(c.Request.Context(), user.ID, pageParam(c), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": commentListJSON(comments)})
}

// Me serves the signed-in account.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// UpdateMe edits the caller's display name and bio.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c), req.Name, req.Bio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteMe removes the caller's account and ends the session. Their
// posts and comments stay up without an author.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.users.DeleteAccount(c.Request.Context(), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
