package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opensocial/internal/services"
)

type BookmarkHandler struct {
	bookmarks *services.BookmarkService
}

func NewBookmarkHandler(bookmarks *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// Add bookmarks a post for the caller.
func (h *BookmarkHandler) Add(c *gin.Context) {
	if err := h.bookmarks.Add(c.Request.Context(), currentUser(c), c.Param("pid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// Remove drops the caller's bookmark.
func (h *BookmarkHandler) Remove(c *gin.Context) {
	if err := h.bookmarks.Remove(c.Request.Context(), currentUser(c), c.Param("pid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// List serves the caller's bookmarked posts.
func (h *BookmarkHandler) List(c *gin.Context) {
	page := pageParam(c)
	posts, err := h.bookmarks.ListForUser(c.Request.Context(), currentUser(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(posts, page))
}
