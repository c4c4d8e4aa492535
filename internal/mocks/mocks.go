package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rental-market/internal/models"
	"rental-market/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByIDs(ctx context.Context, userIDs []int) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	args := m.Called(ctx, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, update models.ProfileUpdate) (models.User, error) {
	args := m.Called(ctx, userID, update)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SoftDelete(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateOrGetRoom(ctx context.Context, userA, userB int, articleID *int) (models.ChatRoom, bool, error) {
	args := m.Called(ctx, userA, userB, articleID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Bool(1), args.Error(2)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatRoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatRoomSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID int, senderID int, body string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ArticleRepositoryMock struct {
	mock.Mock
}

func (m *ArticleRepositoryMock) CreateArticle(ctx context.Context, article models.Article) (models.Article, error) {
	args := m.Called(ctx, article)
	var created models.Article
	if val := args.Get(0); val != nil {
		created = val.(models.Article)
	}
	return created, args.Error(1)
}

func (m *ArticleRepositoryMock) GetArticle(ctx context.Context, articleID int) (models.Article, error) {
	args := m.Called(ctx, articleID)
	var article models.Article
	if val := args.Get(0); val != nil {
		article = val.(models.Article)
	}
	return article, args.Error(1)
}

func (m *ArticleRepositoryMock) ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	args := m.Called(ctx, filter)
	var articles []models.Article
	if val := args.Get(0); val != nil {
		articles = val.([]models.Article)
	}
	return articles, args.Error(1)
}

func (m *ArticleRepositoryMock) DeleteArticle(ctx context.Context, articleID int) error {
	args := m.Called(ctx, articleID)
	return args.Error(0)
}

type BookmarkRepositoryMock struct {
	mock.Mock
}

func (m *BookmarkRepositoryMock) GetBookmark(ctx context.Context, userID int) (models.Bookmark, error) {
	args := m.Called(ctx, userID)
	var bookmark models.Bookmark
	if val := args.Get(0); val != nil {
		bookmark = val.(models.Bookmark)
	}
	return bookmark, args.Error(1)
}

func (m *BookmarkRepositoryMock) AddArticle(ctx context.Context, userID int, articleID int) error {
	args := m.Called(ctx, userID, articleID)
	return args.Error(0)
}

func (m *BookmarkRepositoryMock) RemoveArticle(ctx context.Context, userID int, articleID int) error {
	args := m.Called(ctx, userID, articleID)
	return args.Error(0)
}

type ReviewRepositoryMock struct {
	mock.Mock
}

func (m *ReviewRepositoryMock) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	args := m.Called(ctx, review)
	var created models.Review
	if val := args.Get(0); val != nil {
		created = val.(models.Review)
	}
	return created, args.Error(1)
}

func (m *ReviewRepositoryMock) ListReviews(ctx context.Context, articleID int) ([]models.Review, error) {
	args := m.Called(ctx, articleID)
	var reviews []models.Review
	if val := args.Get(0); val != nil {
		reviews = val.([]models.Review)
	}
	return reviews, args.Error(1)
}

// TokenVerifierMock stands in for the session token service.
type TokenVerifierMock struct {
	mock.Mock
}

func (m *TokenVerifierMock) Verify(token string) (int, error) {
	args := m.Called(token)
	return args.Int(0), args.Error(1)
}

// RelayMock records fan-out calls.
type RelayMock struct {
	mock.Mock
}

func (m *RelayMock) Publish(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ArticleRepository = (*ArticleRepositoryMock)(nil)
var _ repositories.BookmarkRepository = (*BookmarkRepositoryMock)(nil)
var _ repositories.ReviewRepository = (*ReviewRepositoryMock)(nil)
