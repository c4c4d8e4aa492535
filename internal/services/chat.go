package services

import (
	"context"
	"errors"
	"strings"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
	"rental-market/internal/telemetry"
)

// MaxMessageLength bounds a single chat message body.
const MaxMessageLength = 4000

// Relay fans a persisted message out to the room's live subscribers.
type Relay interface {
	Publish(ctx context.Context, msg models.Message) error
}

// ChatService manages rooms and the write-then-fanout message path.
type ChatService struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	users    *UserService
	relay    Relay
	audit    *telemetry.AuditEmitter
}

func NewChatService(rooms repositories.RoomRepository, messages repositories.MessageRepository, users *UserService, relay Relay, audit *telemetry.AuditEmitter) *ChatService {
	return &ChatService{rooms: rooms, messages: messages, users: users, relay: relay, audit: audit}
}

// SetRelay swaps the fan-out target; used when the relay is built after the service.
func (s *ChatService) SetRelay(relay Relay) {
	s.relay = relay
}

// CreateOrGetRoom is idempotent over the unordered pair (user1, user2) and the
// optional article. The caller must be one of the two participants.
func (s *ChatService) CreateOrGetRoom(ctx context.Context, callerID, user1, user2 int, articleID *int) (models.ChatRoom, error) {
	if user1 <= 0 || user2 <= 0 {
		return models.ChatRoom{}, apperr.BadRequest("user1Id and user2Id are required")
	}
	if user1 == user2 {
		return models.ChatRoom{}, apperr.BadRequest("cannot chat with yourself")
	}
	if callerID != user1 && callerID != user2 {
		return models.ChatRoom{}, apperr.Forbidden("caller is not a participant")
	}

	room, created, err := s.rooms.CreateOrGetRoom(ctx, user1, user2, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfChat) {
			return models.ChatRoom{}, apperr.BadRequest("cannot chat with yourself")
		}
		return models.ChatRoom{}, apperr.FromStorage(err)
	}
	if created {
		s.audit.Emit(ctx, telemetry.ActionRoomCreated, callerID, map[string]any{"room_id": room.ID})
	}
	return room, nil
}

// AuthorizeRoom checks that userID may read from or write to roomID.
func (s *ChatService) AuthorizeRoom(ctx context.Context, roomID, userID int) (models.ChatRoom, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return models.ChatRoom{}, apperr.NotFound("chat room not found")
		}
		return models.ChatRoom{}, apperr.FromStorage(err)
	}
	if !room.HasParticipant(userID) {
		return models.ChatRoom{}, apperr.Forbidden("not a chat room participant")
	}
	return room, nil
}

// SendMessage persists the message and only then hands it to the relay.
// A storage failure returns before anything is broadcast.
func (s *ChatService) SendMessage(ctx context.Context, roomID, senderID int, body string) (models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return models.Message{}, apperr.BadRequest("message cannot be empty")
	}
	if len(body) > MaxMessageLength {
		return models.Message{}, apperr.BadRequest("message is too long")
	}
	if _, err := s.AuthorizeRoom(ctx, roomID, senderID); err != nil {
		return models.Message{}, err
	}

	msg, err := s.messages.CreateMessage(ctx, roomID, senderID, body)
	if err != nil {
		return models.Message{}, apperr.FromStorage(err)
	}

	if s.relay != nil {
		// delivery is best effort; the message is already durable
		_ = s.relay.Publish(ctx, msg)
	}
	return msg, nil
}

// GetRoomMessages returns the room history oldest first.
func (s *ChatService) GetRoomMessages(ctx context.Context, roomID, callerID int) ([]models.Message, error) {
	if _, err := s.AuthorizeRoom(ctx, roomID, callerID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListRoomMessages(ctx, roomID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return msgs, nil
}

// GetUserRooms lists userID's rooms, newest activity first. Only the owner may list them.
func (s *ChatService) GetUserRooms(ctx context.Context, userID, callerID int) ([]models.ChatRoomSummary, error) {
	if userID != callerID {
		return nil, apperr.Forbidden("cannot list another user's rooms")
	}
	rooms, err := s.rooms.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	if len(rooms) == 0 || s.users == nil {
		return rooms, nil
	}

	peerIDs := make([]int, 0, len(rooms))
	for _, r := range rooms {
		peerIDs = append(peerIDs, r.PeerID)
	}
	names, err := s.users.Nicknames(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].PeerNickname = names[rooms[i].PeerID]
	}
	return rooms, nil
}
