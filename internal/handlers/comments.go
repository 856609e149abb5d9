package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opensocial/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create adds a comment, optionally as a reply.
func (h *CommentHandler) Create(c *gin.Context) {
	var req struct {
		Content   string `json:"content"`
		ParentCid string `json:"parent_cid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), currentUser(c), c.Param("pid"), req.ParentCid, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": commentJSON(comment)})
}

// Update edits the caller's comment.
func (h *CommentHandler) Update(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.Edit(c.Request.Context(), currentUser(c), c.Param("cid"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": commentJSON(comment)})
}

// Delete removes the caller's comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), currentUser(c), c.Param("cid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// History serves a comment's edit snapshots.
func (h *CommentHandler) History(c *gin.Context) {
	history, err := h.comments.History(c.Request.Context(), c.Param("cid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
