package models

import "time"

// Message is an immutable chat message.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"roomId"`
	SenderID  int       `db:"sender_id" json:"senderId"`
	Body      string    `db:"body" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Socket event names.
const (
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventJoinedRoom     = "joinedRoom"
	EventLeftRoom       = "leftRoom"
	EventError          = "error"
)

// SocketFrame is the envelope exchanged over the chat websocket in both directions.
type SocketFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
