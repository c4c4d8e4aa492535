package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

// MessageRepository defines persistence for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID int, senderID int, body string) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns the committed row.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID int, senderID int, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `INSERT INTO chat_messages (room_id, sender_id, body) VALUES ($1, $2, $3)
        RETURNING id, room_id, sender_id, body, created_at`, roomID, senderID, body)
	return msg, err
}

// ListRoomMessages returns a room's messages oldest first; the last entry is the most recent.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, room_id, sender_id, body, created_at
        FROM chat_messages WHERE room_id=$1 ORDER BY created_at ASC, id ASC`, roomID)
	return msgs, err
}
