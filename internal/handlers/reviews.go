package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/services"
)

// ReviewHandler serves article reviews.
type ReviewHandler struct {
	reviews *services.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(reviews *services.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: orNop(logger)}
}

func (h *ReviewHandler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	r.GET("/reviews", h.List)
	r.POST("/reviews/write", authMW, h.Write)
}

func (h *ReviewHandler) List(c *gin.Context) {
	articleID, err := queryInt(c, "articleId", 0)
	if err != nil || articleID <= 0 {
		respondError(c, h.logger, apperr.BadRequest("invalid articleId"))
		return
	}
	reviews, err := h.reviews.List(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Write(c *gin.Context) {
	articleID, err := queryInt(c, "articleId", 0)
	if err != nil || articleID <= 0 {
		respondError(c, h.logger, apperr.BadRequest("invalid articleId"))
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	review, err := h.reviews.Write(c.Request.Context(), currentUserID(c), articleID, req.Rating, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
