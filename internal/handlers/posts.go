package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"opensocial/internal/models"
	"opensocial/internal/services"
	"opensocial/internal/utils"
)

// topListCacheTTL bounds how stale the anonymous front page may get.
const topListCacheTTL = time.Minute

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

type postRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ListTop serves the ranked front page. The first anonymous page of each
// category is cached briefly since it absorbs most of the read traffic.
func (h *PostHandler) ListTop(c *gin.Context) {
	viewer := currentUser(c)
	page := pageParam(c)
	category := c.Query("category")
	search := c.Query("q")

	cacheKey := fmt.Sprintf("top:%s:%d", category, page)
	cacheable := viewer == nil && page == 1 && search == ""
	if cacheable {
		if cached, ok := utils.GetCache().Get(cacheKey); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	posts, err := h.posts.List(c.Request.Context(), category, "top", search, page, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	body := listBody(posts, page)
	if cacheable {
		utils.GetCache().Set(cacheKey, body, topListCacheTTL)
	}
	c.JSON(http.StatusOK, body)
}

// ListNew serves posts in submission order.
func (h *PostHandler) ListNew(c *gin.Context) {
	page := pageParam(c)
	posts, err := h.posts.List(c.Request.Context(), c.Query("category"), "new", c.Query("q"), page, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(posts, page))
}

// Detail serves one post with its full comment thread.
func (h *PostHandler) Detail(c *gin.Context) {
	viewer := currentUser(c)
	pid := c.Param("pid")

	post, err := h.posts.GetByPid(c.Request.Context(), pid, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.comments.ListForPost(c.Request.Context(), pid, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     postJSON(post),
		"comments": commentListJSON(comments),
	})
}

// Create submits a new post.
func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUser(c), req.Title, req.URL, req.Content, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": postJSON(post)})
}

// Update edits the caller's post.
func (h *PostHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.Edit(c.Request.Context(), currentUser(c), c.Param("pid"), req.Title, req.URL, req.Content, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": postJSON(post)})
}

// Delete removes the caller's post and drops the stale front pages.
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), currentUser(c), c.Param("pid")); err != nil {
		respondError(c, err)
		return
	}

	utils.GetCache().Delete("top::1")
	for _, cat := range models.Categories {
		utils.GetCache().Delete(fmt.Sprintf("top:%s:1", cat))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// History serves a post's edit snapshots.
func (h *PostHandler) History(c *gin.Context) {
	history, err := h.posts.History(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
