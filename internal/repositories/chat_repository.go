package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrSelfChat     = errors.New("cannot create chat room with self")
)

const roomColumns = `id, user1_id, user2_id, article_id, created_at`

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	CreateOrGetRoom(ctx context.Context, userA, userB int, articleID *int) (models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoomSummary, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateOrGetRoom returns the room for the unordered pair (and article, when
// given), creating it on first contact. The bool reports whether it was created.
func (r *RoomRepo) CreateOrGetRoom(ctx context.Context, userA, userB int, articleID *int) (models.ChatRoom, bool, error) {
	if userA == userB {
		return models.ChatRoom{}, false, ErrSelfChat
	}

	room, err := r.findRoom(ctx, userA, userB, articleID)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, false, err
	}

	user1, user2 := userA, userB
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	err = r.db.GetContext(ctx, &room, `INSERT INTO chat_rooms (user1_id, user2_id, article_id) VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING RETURNING `+roomColumns, user1, user2, articleID)
	if err == nil {
		return room, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, false, err
	}

	// lost an insert race; the winner's row is now visible
	room, err = r.findRoom(ctx, userA, userB, articleID)
	return room, false, err
}

func (r *RoomRepo) findRoom(ctx context.Context, userA, userB int, articleID *int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms
        WHERE ((user1_id=$1 AND user2_id=$2) OR (user1_id=$2 AND user2_id=$1))
        AND article_id IS NOT DISTINCT FROM $3
        ORDER BY id LIMIT 1`, userA, userB, articleID)
	return room, err
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	return room, err
}

// ListRoomsForUser returns the user's rooms, most recently active first.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoomSummary, error) {
	query := `SELECT r.id, r.user1_id, r.user2_id, r.article_id, r.created_at,
            COALESCE(MAX(m.created_at), r.created_at) AS last_activity
        FROM chat_rooms r
        LEFT JOIN chat_messages m ON m.room_id = r.id
        WHERE r.user1_id=$1 OR r.user2_id=$1
        GROUP BY r.id
        ORDER BY last_activity DESC, r.id DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ChatRoomSummary
	for rows.Next() {
		var summary models.ChatRoomSummary
		if err := rows.StructScan(&summary); err != nil {
			return nil, err
		}
		summary.PeerID = summary.Peer(userID)
		result = append(result, summary)
	}
	return result, rows.Err()
}
