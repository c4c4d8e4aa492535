package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

var ErrBookmarkNotFound = errors.New("bookmark not found")

// BookmarkRepository manages per-user saved articles.
type BookmarkRepository interface {
	GetBookmark(ctx context.Context, userID int) (models.Bookmark, error)
	AddArticle(ctx context.Context, userID int, articleID int) error
	RemoveArticle(ctx context.Context, userID int, articleID int) error
}

// BookmarkRepo is a sqlx implementation of BookmarkRepository.
type BookmarkRepo struct {
	db *sqlx.DB
}

// NewBookmarkRepo constructs a BookmarkRepo.
func NewBookmarkRepo(db *sqlx.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// GetBookmark returns the user's collection with saved articles, most recently saved first.
func (r *BookmarkRepo) GetBookmark(ctx context.Context, userID int) (models.Bookmark, error) {
	bookmark, err := r.bookmarkFor(ctx, userID)
	if err != nil {
		return models.Bookmark{}, err
	}

	bookmark.Articles = []models.Article{}
	err = r.db.SelectContext(ctx, &bookmark.Articles, `SELECT `+articleColumns+` FROM bookmark_articles ba
        JOIN articles a ON a.id = ba.article_id
        WHERE ba.bookmark_id=$1 ORDER BY ba.created_at DESC, a.id DESC`, bookmark.ID)
	if err != nil {
		return models.Bookmark{}, err
	}
	if err := loadArticleRelations(ctx, r.db, bookmark.Articles); err != nil {
		return models.Bookmark{}, err
	}
	return bookmark, nil
}

// AddArticle saves an article; saving it twice is a no-op.
func (r *BookmarkRepo) AddArticle(ctx context.Context, userID int, articleID int) error {
	bookmark, err := r.bookmarkFor(ctx, userID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO bookmark_articles (bookmark_id, article_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING`, bookmark.ID, articleID)
	return err
}

// RemoveArticle unsaves an article; removing an unsaved article is a no-op.
func (r *BookmarkRepo) RemoveArticle(ctx context.Context, userID int, articleID int) error {
	bookmark, err := r.bookmarkFor(ctx, userID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM bookmark_articles WHERE bookmark_id=$1 AND article_id=$2`, bookmark.ID, articleID)
	return err
}

func (r *BookmarkRepo) bookmarkFor(ctx context.Context, userID int) (models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.db.GetContext(ctx, &bookmark, `SELECT id, user_id FROM bookmarks WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bookmark{}, ErrBookmarkNotFound
	}
	return bookmark, err
}
