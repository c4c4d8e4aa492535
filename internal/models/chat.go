package models

import "time"

// ChatRoom is a conversation between exactly two users, optionally scoped to one article.
type ChatRoom struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1Id"`
	User2ID   int       `db:"user2_id" json:"user2Id"`
	ArticleID *int      `db:"article_id" json:"articleId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two room members.
func (r ChatRoom) HasParticipant(userID int) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// Peer returns the other participant of the room.
func (r ChatRoom) Peer(userID int) int {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// ChatRoomSummary is the room listing entry returned to a participant.
type ChatRoomSummary struct {
	ChatRoom
	PeerID       int       `json:"peerId"`
	PeerNickname string    `json:"peerNickname,omitempty"`
	LastActivity time.Time `db:"last_activity" json:"lastActivity"`
}
