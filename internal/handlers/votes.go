package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opensocial/internal/services"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	Value int `json:"value"`
}

// VotePost casts a vote on a post.
func (h *VoteHandler) VotePost(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.votes.VotePost(c.Request.Context(), currentUser(c), c.Param("pid"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// UnvotePost withdraws the caller's vote on a post.
func (h *VoteHandler) UnvotePost(c *gin.Context) {
	if err := h.votes.UnvotePost(c.Request.Context(), currentUser(c), c.Param("pid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// VoteComment casts a vote on a comment.
func (h *VoteHandler) VoteComment(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.votes.VoteComment(c.Request.Context(), currentUser(c), c.Param("cid"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// Voted serves the posts the caller has voted on.
func (h *VoteHandler) Voted(c *gin.Context) {
	posts, err := h.votes.ListVotedPosts(c.Request.Context(), currentUser(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postListJSON(posts)})
}

// UnvoteComment withdraws the caller's vote on a comment.
func (h *VoteHandler) UnvoteComment(c *gin.Context) {
	if err := h.votes.UnvoteComment(c.Request.Context(), currentUser(c), c.Param("cid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
