package models

import "time"

// User is a persisted account. PasswordHash never leaves the auth flow.
type User struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password"`
	Username     string    `db:"username"`
	Nickname     string    `db:"nickname"`
	IsAdmin      bool      `db:"is_admin"`
	ProfileImage *string   `db:"profile_image"`
	Deleted      bool      `db:"deleted"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Profile is the public view of a user.
type Profile struct {
	ID           int       `json:"id"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	IsAdmin      bool      `json:"isAdmin"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile returns the caller-facing view. Email is included only for the owner.
func (u User) Profile(includeEmail bool) Profile {
	p := Profile{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		IsAdmin:      u.IsAdmin,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
	if includeEmail {
		p.Email = u.Email
	}
	return p
}

// ProfileUpdate carries optional profile mutations.
type ProfileUpdate struct {
	Username     *string `json:"username"`
	Nickname     *string `json:"nickname"`
	ProfileImage *string `json:"profileImage"`
}
