package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/services"
)

// SessionCookie describes how the session token is delivered to browsers.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (s SessionCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	auth   *services.AuthService
	cookie SessionCookie
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, cookie SessionCookie, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, logger: orNop(logger)}
}

func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("email, password, username and nickname are required"))
		return
	}

	profile, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Nickname: req.Nickname,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// Login sets the session cookie and also returns the token for API clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.cookie.set(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"loginUser": result.User, "jwt": result.Token})
}

// Logout only clears the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
