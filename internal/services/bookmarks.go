package services

import (
	"context"
	"errors"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
)

// BookmarkService manages a user's saved articles.
type BookmarkService struct {
	bookmarks repositories.BookmarkRepository
	articles  *ArticleService
}

func NewBookmarkService(bookmarks repositories.BookmarkRepository, articles *ArticleService) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, articles: articles}
}

func (s *BookmarkService) Get(ctx context.Context, callerID, userID int) (models.Bookmark, error) {
	if callerID != userID {
		return models.Bookmark{}, apperr.Forbidden("cannot read another user's bookmarks")
	}
	bookmark, err := s.bookmarks.GetBookmark(ctx, userID)
	if err != nil {
		return models.Bookmark{}, bookmarkError(err)
	}
	return bookmark, nil
}

func (s *BookmarkService) Add(ctx context.Context, callerID, userID, articleID int) (models.Bookmark, error) {
	if callerID != userID {
		return models.Bookmark{}, apperr.Forbidden("cannot modify another user's bookmarks")
	}
	if _, err := s.articles.Get(ctx, articleID); err != nil {
		return models.Bookmark{}, err
	}
	if err := s.bookmarks.AddArticle(ctx, userID, articleID); err != nil {
		return models.Bookmark{}, bookmarkError(err)
	}
	return s.Get(ctx, callerID, userID)
}

func (s *BookmarkService) Remove(ctx context.Context, callerID, userID, articleID int) (models.Bookmark, error) {
	if callerID != userID {
		return models.Bookmark{}, apperr.Forbidden("cannot modify another user's bookmarks")
	}
	if err := s.bookmarks.RemoveArticle(ctx, userID, articleID); err != nil {
		return models.Bookmark{}, bookmarkError(err)
	}
	return s.Get(ctx, callerID, userID)
}

func bookmarkError(err error) error {
	if errors.Is(err, repositories.ErrBookmarkNotFound) {
		return apperr.NotFound("bookmark not found")
	}
	return apperr.FromStorage(err)
}
