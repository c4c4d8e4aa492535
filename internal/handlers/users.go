package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/services"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	users  *services.UserService
	auth   *services.AuthService
	cookie SessionCookie
	logger *zap.Logger
}

func NewUserHandler(users *services.UserService, auth *services.AuthService, cookie SessionCookie, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, cookie: cookie, logger: orNop(logger)}
}

func (h *UserHandler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	r.GET("/users/me", authMW, h.Me)
	r.PATCH("/users/me", authMW, h.UpdateMe)
	r.PATCH("/users/me/password", authMW, h.UpdatePassword)
	r.DELETE("/users/me", authMW, h.DeleteMe)
	r.GET("/users/:id", h.Get)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := currentUserID(c)
	profile, err := h.users.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	profile, err := h.users.GetProfile(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("invalid request body"))
		return
	}
	profile, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("oldPassword and newPassword are required"))
		return
	}
	if err := h.auth.UpdatePassword(c.Request.Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.cookie.clear(c)
	c.Status(http.StatusNoContent)
}
