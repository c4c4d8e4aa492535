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

// UserService exposes profile reads and mutations.
type UserService struct {
	users repositories.UserRepository
	audit *telemetry.AuditEmitter
}

func NewUserService(users repositories.UserRepository, audit *telemetry.AuditEmitter) *UserService {
	return &UserService{users: users, audit: audit}
}

// GetProfile returns userID's profile; the email is only shown to its owner.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID int) (models.Profile, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(viewerID == userID), nil
}

// UpdateProfile applies optional username, nickname and image changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, update models.ProfileUpdate) (models.Profile, error) {
	current, err := s.activeUser(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if trimmed == "" {
			return models.Profile{}, apperr.BadRequest("username cannot be empty")
		}
		update.Username = &trimmed
	}
	if update.Nickname != nil {
		trimmed := strings.TrimSpace(*update.Nickname)
		if trimmed == "" {
			return models.Profile{}, apperr.BadRequest("nickname cannot be empty")
		}
		update.Nickname = &trimmed
		if trimmed != current.Nickname {
			taken, err := s.users.NicknameExists(ctx, trimmed)
			if err != nil {
				return models.Profile{}, apperr.Internal(err)
			}
			if taken {
				return models.Profile{}, apperr.Conflict("nickname already taken")
			}
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Profile{}, apperr.BadRequest("user not found")
		}
		return models.Profile{}, apperr.FromStorage(err)
	}
	return user.Profile(true), nil
}

// Delete soft-deletes the account; articles and reviews stay.
func (s *UserService) Delete(ctx context.Context, userID int) error {
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.FromStorage(err)
	}
	s.audit.Emit(ctx, telemetry.ActionUserDeleted, userID, nil)
	return nil
}

// Nicknames resolves display names for a set of users.
func (s *UserService) Nicknames(ctx context.Context, userIDs []int) (map[int]string, error) {
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Nickname
	}
	return names, nil
}

func (s *UserService) activeUser(ctx context.Context, userID int) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, apperr.FromStorage(err)
	}
	if user.Deleted {
		return models.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}
