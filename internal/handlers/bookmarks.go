package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/models"
	"rental-market/internal/services"
)

// BookmarkHandler serves a user's saved articles.
type BookmarkHandler struct {
	bookmarks *services.BookmarkService
	logger    *zap.Logger
}

func NewBookmarkHandler(bookmarks *services.BookmarkService, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, logger: orNop(logger)}
}

func (h *BookmarkHandler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	r.GET("/bookmarks/:userId", authMW, h.Get)
	r.PATCH("/bookmarks/:userId/add/:articleId", authMW, h.mutate(h.bookmarks.Add))
	r.PATCH("/bookmarks/:userId/remove/:articleId", authMW, h.mutate(h.bookmarks.Remove))
}

func (h *BookmarkHandler) Get(c *gin.Context) {
	userID, err := paramInt(c, "userId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	bookmark, err := h.bookmarks.Get(c.Request.Context(), currentUserID(c), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookmark)
}

type bookmarkMutation func(ctx context.Context, callerID, userID, articleID int) (models.Bookmark, error)

func (h *BookmarkHandler) mutate(apply bookmarkMutation) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := paramInt(c, "userId")
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		articleID, err := paramInt(c, "articleId")
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		bookmark, err := apply(c.Request.Context(), currentUserID(c), userID, articleID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, bookmark)
	}
}
