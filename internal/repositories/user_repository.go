package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, email, password, username, nickname, is_admin, profile_image, deleted, created_at, updated_at`

// UserRepository abstracts credential and profile persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByIDs(ctx context.Context, userIDs []int) ([]models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateProfile(ctx context.Context, userID int, update models.ProfileUpdate) (models.User, error)
	SoftDelete(ctx context.Context, userID int) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts the user and its empty bookmark collection in one transaction.
func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var created models.User
	err = tx.QueryRowxContext(ctx, `INSERT INTO users (email, password, username, nickname)
        VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.Username, user.Nickname).StructScan(&created)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO bookmarks (user_id) VALUES ($1)`, created.ID); err != nil {
		return models.User{}, fmt.Errorf("insert bookmark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return created, nil
}

// GetByID fetches a user, including soft-deleted ones.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByEmail fetches an active user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1 AND deleted = FALSE`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByIDs fetches users in bulk; missing ids are skipped.
func (r *UserRepo) GetByIDs(ctx context.Context, userIDs []int) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, err
}

// EmailExists reports whether any account, deleted or not, owns the email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email)
	return exists, err
}

// NicknameExists reports whether the nickname is taken.
func (r *UserRepo) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE nickname=$1)`, nickname)
	return exists, err
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password=$2, updated_at=NOW() WHERE id=$1 AND deleted = FALSE`, userID, passwordHash)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

// UpdateProfile applies the non-nil fields of update.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, update models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET
            username = COALESCE($2, username),
            nickname = COALESCE($3, nickname),
            profile_image = COALESCE($4, profile_image),
            updated_at = NOW()
        WHERE id=$1 AND deleted = FALSE
        RETURNING `+userColumns,
		userID, update.Username, update.Nickname, update.ProfileImage)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SoftDelete flags the account as deleted; authored rows are kept.
func (r *UserRepo) SoftDelete(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET deleted = TRUE, updated_at=NOW() WHERE id=$1 AND deleted = FALSE`, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}
