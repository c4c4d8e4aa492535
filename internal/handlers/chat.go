package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/services"
)

// ChatHandler serves the REST side of private chat.
type ChatHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: orNop(logger)}
}

func (h *ChatHandler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	r.POST("/chat/rooms", authMW, h.CreateOrGetRoom)
	r.GET("/chat/rooms/user/:userId", authMW, h.ListUserRooms)
	r.GET("/chat/rooms/:roomId/messages", authMW, h.GetRoomMessages)
	r.POST("/chat/rooms/:roomId/messages", authMW, h.PostRoomMessage)
}

// CreateOrGetRoom returns the room for the pair, creating it on first contact.
func (h *ChatHandler) CreateOrGetRoom(c *gin.Context) {
	var req struct {
		User1ID   int  `json:"user1Id"`
		User2ID   int  `json:"user2Id"`
		ArticleID *int `json:"articleId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	room, err := h.chat.CreateOrGetRoom(c.Request.Context(), currentUserID(c), req.User1ID, req.User2ID, req.ArticleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomMessages returns the room history oldest first.
func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	roomID, err := paramInt(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	msgs, err := h.chat.GetRoomMessages(c.Request.Context(), roomID, currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ListUserRooms returns the caller's rooms, most recent activity first.
func (h *ChatHandler) ListUserRooms(c *gin.Context) {
	userID, err := paramInt(c, "userId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rooms, err := h.chat.GetUserRooms(c.Request.Context(), userID, currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// PostRoomMessage is the REST path for sendMessage; it persists and then
// relays exactly like the socket event.
func (h *ChatHandler) PostRoomMessage(c *gin.Context) {
	roomID, err := paramInt(c, "roomId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req struct {
		SenderID int    `json:"senderId"`
		Message  string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.BadRequest("invalid request body"))
		return
	}
	userID := currentUserID(c)
	if req.SenderID != 0 && req.SenderID != userID {
		respondError(c, h.logger, apperr.Forbidden("senderId does not match the authenticated user"))
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), roomID, userID, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
