package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/services"
)

// ArticleHandler serves rental listings.
type ArticleHandler struct {
	articles *services.ArticleService
	logger   *zap.Logger
}

func NewArticleHandler(articles *services.ArticleService, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: orNop(logger)}
}

func (h *ArticleHandler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	r.GET("/articles", h.List)
	r.GET("/articles/:id", h.Get)
	r.POST("/articles/write", authMW, h.Write)
	r.DELETE("/articles/:id", authMW, h.Delete)
}

func (h *ArticleHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	articles, err := h.articles.List(c.Request.Context(), models.ArticleFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) Get(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Write(c *gin.Context) {
	var req struct {
		Title       string   `json:"title"`
		Content     string   `json:"content"`
		PricePerDay int      `json:"pricePerDay"`
		Categories  []string `json:"categories"`
		Addresses   []string `json:"addresses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	article, err := h.articles.Write(c.Request.Context(), currentUserID(c), services.ArticleInput{
		Title:       req.Title,
		Content:     req.Content,
		PricePerDay: req.PricePerDay,
		Categories:  req.Categories,
		Addresses:   req.Addresses,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.articles.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
