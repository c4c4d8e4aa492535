package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-market/internal/apperr"
	"rental-market/internal/mocks"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
)

func TestArticleListClampsPaging(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	svc := NewArticleService(articles)

	articles.On("ListArticles", mock.Anything, models.ArticleFilter{Category: "tools", Limit: 100}).
		Return([]models.Article{{ID: 1}}, nil).Once()

	list, err := svc.List(context.Background(), models.ArticleFilter{Category: " tools ", Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	articles.AssertExpectations(t)
}

func TestArticleWriteCleansInput(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	svc := NewArticleService(articles)

	articles.On("CreateArticle", mock.Anything, models.Article{
		AuthorID: 1, Title: "Tent", PricePerDay: 5,
		Categories: []string{"camping"}, Addresses: []string{"Lake rd"},
	}).Return(models.Article{ID: 9, Title: "Tent"}, nil).Once()

	article, err := svc.Write(context.Background(), 1, ArticleInput{
		Title: " Tent ", PricePerDay: 5,
		Categories: []string{"camping", " ", "camping"}, Addresses: []string{"Lake rd"},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, article.ID)

	_, err = svc.Write(context.Background(), 1, ArticleInput{Title: "  "})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	_, err = svc.Write(context.Background(), 1, ArticleInput{Title: "x", PricePerDay: -1})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestArticleDeleteAuthorOnly(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	svc := NewArticleService(articles)

	articles.On("GetArticle", mock.Anything, 4).Return(models.Article{ID: 4, AuthorID: 1}, nil)
	articles.On("DeleteArticle", mock.Anything, 4).Return(nil).Once()

	assert.ErrorIs(t, svc.Delete(context.Background(), 2, 4), apperr.ErrForbidden)
	assert.NoError(t, svc.Delete(context.Background(), 1, 4))
	articles.AssertExpectations(t)
}

func TestArticleGetNotFound(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	articles.On("GetArticle", mock.Anything, 4).Return(nil, repositories.ErrArticleNotFound)

	_, err := NewArticleService(articles).Get(context.Background(), 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBookmarkAddChecksOwnerAndArticle(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	bookmarks := new(mocks.BookmarkRepositoryMock)
	svc := NewBookmarkService(bookmarks, NewArticleService(articles))
	ctx := context.Background()

	_, err := svc.Add(ctx, 2, 1, 3)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	articles.On("GetArticle", mock.Anything, 99).Return(nil, repositories.ErrArticleNotFound).Once()
	_, err = svc.Add(ctx, 1, 1, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	articles.On("GetArticle", mock.Anything, 3).Return(models.Article{ID: 3}, nil).Once()
	bookmarks.On("AddArticle", mock.Anything, 1, 3).Return(nil).Once()
	bookmarks.On("GetBookmark", mock.Anything, 1).Return(models.Bookmark{ID: 1, UserID: 1, Articles: []models.Article{{ID: 3}}}, nil).Once()

	bookmark, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	assert.Len(t, bookmark.Articles, 1)
	bookmarks.AssertExpectations(t)
}

func TestBookmarkRemove(t *testing.T) {
	bookmarks := new(mocks.BookmarkRepositoryMock)
	svc := NewBookmarkService(bookmarks, nil)

	bookmarks.On("RemoveArticle", mock.Anything, 1, 3).Return(nil).Once()
	bookmarks.On("GetBookmark", mock.Anything, 1).Return(models.Bookmark{ID: 1, UserID: 1, Articles: []models.Article{}}, nil).Once()

	bookmark, err := svc.Remove(context.Background(), 1, 1, 3)
	require.NoError(t, err)
	assert.Empty(t, bookmark.Articles)

	bookmarks.On("RemoveArticle", mock.Anything, 5, 3).Return(repositories.ErrBookmarkNotFound).Once()
	_, err = svc.Remove(context.Background(), 5, 5, 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReviewWriteValidatesRating(t *testing.T) {
	articles := new(mocks.ArticleRepositoryMock)
	reviews := new(mocks.ReviewRepositoryMock)
	svc := NewReviewService(reviews, NewArticleService(articles))

	_, err := svc.Write(context.Background(), 1, 2, 6, "too good")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	articles.On("GetArticle", mock.Anything, 2).Return(models.Article{ID: 2}, nil).Once()
	reviews.On("CreateReview", mock.Anything, models.Review{ArticleID: 2, AuthorID: 1, Rating: 4, Content: "nice"}).
		Return(models.Review{ID: 1, ArticleID: 2, AuthorID: 1, Rating: 4, Content: "nice"}, nil).Once()

	review, err := svc.Write(context.Background(), 1, 2, 4, "nice")
	require.NoError(t, err)
	assert.Equal(t, 1, review.ID)
	reviews.AssertExpectations(t)
}

func TestUserProfileHidesDeletedAndEmail(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := NewUserService(users, nil)

	users.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Email: "a@x.com", Nickname: "ally"}, nil)
	users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Deleted: true}, nil)

	own, err := svc.GetProfile(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", own.Email)

	other, err := svc.GetProfile(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Empty(t, other.Email)

	_, err = svc.GetProfile(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserUpdateProfileNicknameConflict(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := NewUserService(users, nil)
	taken := "bobby"

	users.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Nickname: "ally"}, nil)
	users.On("NicknameExists", mock.Anything, "bobby").Return(true, nil).Once()

	_, err := svc.UpdateProfile(context.Background(), 1, models.ProfileUpdate{Nickname: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUserDelete(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := NewUserService(users, nil)

	users.On("SoftDelete", mock.Anything, 1).Return(nil).Once()
	users.On("SoftDelete", mock.Anything, 2).Return(repositories.ErrUserNotFound).Once()

	assert.NoError(t, svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), 2), apperr.ErrNotFound)
}
