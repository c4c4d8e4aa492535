package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"rental-market/internal/apperr"
	"rental-market/internal/middleware"
	"rental-market/internal/models"
	"rental-market/internal/observability"
	"rental-market/internal/services"
	"rental-market/internal/telemetry"
)

const wsRoutingKey = "ws_events.chats"

type roomRequest struct {
	RoomID int `json:"roomId"`
}

type sendRequest struct {
	RoomID   int    `json:"roomId"`
	SenderID int    `json:"senderId"`
	Message  string `json:"message"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatWebSocketHandler serves GET /chat/ws.
type ChatWebSocketHandler struct {
	hub        *Hub
	chat       *services.ChatService
	verifier   middleware.TokenVerifier
	cookieName string
	audit      *telemetry.AuditEmitter
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler. allowOrigin
// decides which browser origins may open a socket; nil allows all.
func NewChatWebSocketHandler(hub *Hub, chat *services.ChatService, verifier middleware.TokenVerifier, cookieName string, audit *telemetry.AuditEmitter, logger *zap.Logger, allowOrigin func(origin string) bool) *ChatWebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ChatWebSocketHandler{
		hub:        hub,
		chat:       chat,
		verifier:   verifier,
		cookieName: cookieName,
		audit:      audit,
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}
	return h
}

// Handle authenticates the handshake, upgrades and starts the client pumps.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("rental-market/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	token, ok := handshakeToken(c, h.cookieName)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
		return
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	requestID := c.GetString(middleware.RequestIDKey)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	// the connection outlives the request, so drop its cancellation
	connCtx := telemetry.ContextWithRequestID(context.WithoutCancel(ctx), requestID)

	client := newClient(conn, info)
	observability.IncWSActive("chat")
	h.publish(connCtx, info, "ws_connect", "")

	go client.writePump()
	go h.serve(connCtx, client)
}

// handshakeToken also accepts ?token= since browsers cannot set headers on a
// websocket upgrade. REST routes never read the query.
func handshakeToken(c *gin.Context, cookieName string) (string, bool) {
	if token, ok := middleware.TokenFromRequest(c.Request, cookieName); ok {
		return token, true
	}
	token := c.Query("token")
	return token, token != ""
}

func (h *ChatWebSocketHandler) serve(ctx context.Context, client *Client) {
	err := client.readPump(func(c *Client, payload []byte) {
		h.dispatch(ctx, c, payload)
	})

	reason := ""
	if err != nil {
		reason = err.Error()
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			h.publish(ctx, client.info, "ws_error", reason)
		}
	}
	h.hub.Unregister(client)
	observability.DecWSActive("chat")
	h.publish(ctx, client.info, "ws_disconnect", reason)
}

func (h *ChatWebSocketHandler) dispatch(ctx context.Context, c *Client, payload []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		h.replyError(c, apperr.BadRequest("malformed frame"))
		return
	}

	switch frame.Event {
	case models.EventJoinRoom:
		var req roomRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.RoomID <= 0 {
			h.replyError(c, apperr.BadRequest("roomId is required"))
			return
		}
		if _, err := h.chat.AuthorizeRoom(ctx, req.RoomID, c.UserID()); err != nil {
			h.replyError(c, err)
			return
		}
		h.hub.Join(req.RoomID, c)
		h.reply(c, models.EventJoinedRoom, roomRequest{RoomID: req.RoomID})

	case models.EventLeaveRoom:
		var req roomRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.RoomID <= 0 {
			h.replyError(c, apperr.BadRequest("roomId is required"))
			return
		}
		h.hub.Leave(req.RoomID, c)
		h.reply(c, models.EventLeftRoom, roomRequest{RoomID: req.RoomID})

	case models.EventSendMessage:
		var req sendRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.RoomID <= 0 {
			h.replyError(c, apperr.BadRequest("roomId and message are required"))
			return
		}
		if req.SenderID != 0 && req.SenderID != c.UserID() {
			h.replyError(c, apperr.Forbidden("senderId does not match the authenticated user"))
			return
		}
		// the relay delivers the stored message to the room, sender included
		if _, err := h.chat.SendMessage(ctx, req.RoomID, c.UserID(), req.Message); err != nil {
			h.replyError(c, err)
		}

	default:
		h.replyError(c, apperr.BadRequest("unknown event"))
	}
}

func (h *ChatWebSocketHandler) reply(c *Client, event string, data any) {
	payload, err := encodeFrame(event, data)
	if err != nil {
		h.logger.Error("encode frame", zap.String("event", event), zap.Error(err))
		return
	}
	h.hub.sendTo(c, payload)
}

func (h *ChatWebSocketHandler) replyError(c *Client, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("websocket event failed", zap.String("conn_id", c.info.ConnID), zap.Error(err))
	}
	h.reply(c, models.EventError, gin.H{"message": apperr.MessageOf(err)})
}

func (h *ChatWebSocketHandler) publish(ctx context.Context, info ConnInfo, event, reason string) {
	observability.IncWSEvent("chat", event)
	err := h.audit.PublishEvent(ctx, wsRoutingKey, telemetry.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   info.eventPayload(event, reason),
	})
	if err != nil {
		h.logger.Warn("ws event publish failed", zap.String("event", event), zap.Error(err))
	}
}
