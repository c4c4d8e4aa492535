// Package services holds the business rules that sit between HTTP/socket
// handlers and the repositories.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
	"rental-market/internal/telemetry"
)

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	Nickname string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  models.Profile
	Token string
}

// AuthService handles registration, login and password changes.
type AuthService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
	cost   int
	audit  *telemetry.AuditEmitter
}

// NewAuthService constructs an AuthService. cost is the bcrypt work factor;
// values bcrypt would reject fall back to bcrypt.DefaultCost.
func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, cost int, audit *telemetry.AuditEmitter) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, cost: cost, audit: audit}
}

// Register creates a user and its empty bookmark collection.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.Profile, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Nickname = strings.TrimSpace(in.Nickname)
	if in.Email == "" || in.Password == "" || in.Username == "" || in.Nickname == "" {
		return models.Profile{}, apperr.BadRequest("email, password, username and nickname are required")
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return models.Profile{}, apperr.Internal(err)
	}
	if exists {
		return models.Profile{}, apperr.Conflict("email already registered")
	}

	exists, err = s.users.NicknameExists(ctx, in.Nickname)
	if err != nil {
		return models.Profile{}, apperr.Internal(err)
	}
	if exists {
		return models.Profile{}, apperr.Conflict("nickname already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.Profile{}, apperr.BadRequest("password cannot be hashed")
	}

	user, err := s.users.Create(ctx, models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Username:     in.Username,
		Nickname:     in.Nickname,
	})
	if err != nil {
		// the unique indexes are the real guard against concurrent registrations
		return models.Profile{}, apperr.FromStorage(err)
	}

	s.audit.Emit(ctx, telemetry.ActionUserRegistered, user.ID, nil)
	return user.Profile(true), nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}

	s.audit.Emit(ctx, telemetry.ActionUserLoggedIn, user.ID, nil)
	return LoginResult{User: user.Profile(true), Token: token}, nil
}

// UpdatePassword replaces the password after checking the old one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperr.BadRequest("new password is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user.Deleted {
		return apperr.Wrap(apperr.KindBadRequest, "user not found", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.BadRequest("old password does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "password cannot be hashed", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "password update failed", err)
	}

	s.audit.Emit(ctx, telemetry.ActionPasswordChanged, userID, nil)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
