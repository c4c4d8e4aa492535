package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-market/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var userCols = []string{"id", "email", "password", "username", "nickname", "is_admin", "profile_image", "deleted", "created_at", "updated_at"}

func TestUserCreateInsertsBookmarkInSameTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password, username, nickname)`)).
		WithArgs("a@x.com", "hash", "Alice", "ally").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@x.com", "hash", "Alice", "ally", false, nil, false, now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookmarks (user_id) VALUES ($1)`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user, err := repo.Create(context.Background(), models.User{Email: "a@x.com", PasswordHash: "hash", Username: "Alice", Nickname: "ally"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "ally", user.Nickname)
}

func TestUserCreateRollsBackOnBookmarkFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "a@x.com", "hash", "Alice", "ally", false, nil, false, now, now))
	mock.ExpectExec(`INSERT INTO bookmarks`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.User{Email: "a@x.com", PasswordHash: "hash", Username: "Alice", Nickname: "ally"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`FROM users WHERE email=\$1 AND deleted = FALSE`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserSoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`UPDATE users SET deleted = TRUE`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET deleted = TRUE`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDelete(context.Background(), 3))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 4), ErrUserNotFound)
}

func TestUserGetByIDsExpandsIn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE id IN \(\$1, \$2\)`).
		WithArgs(2, 3).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(2, "b@x.com", "h", "Bob", "bobby", false, nil, false, now, now).
			AddRow(3, "c@x.com", "h", "Carol", "caro", false, nil, false, now, now))

	users, err := repo.GetByIDs(context.Background(), []int{2, 3})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	none, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

var roomCols = []string{"id", "user1_id", "user2_id", "article_id", "created_at"}

func TestCreateOrGetRoomReturnsExistingForEitherOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	for _, pair := range [][2]int{{1, 2}, {2, 1}} {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE ((user1_id=$1 AND user2_id=$2) OR (user1_id=$2 AND user2_id=$1))`)).
			WithArgs(pair[0], pair[1], nil).
			WillReturnRows(sqlmock.NewRows(roomCols).AddRow(10, 1, 2, nil, now))
	}

	first, created, err := repo.CreateOrGetRoom(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.False(t, created)
	second, _, err := repo.CreateOrGetRoom(context.Background(), 2, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateOrGetRoomInsertsSortedPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)
	articleID := 5

	mock.ExpectQuery(`SELECT .* FROM chat_rooms`).
		WithArgs(9, 4, &articleID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO chat_rooms (user1_id, user2_id, article_id)`)).
		WithArgs(4, 9, &articleID).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(11, 4, 9, 5, time.Now()))

	room, created, err := repo.CreateOrGetRoom(context.Background(), 9, 4, &articleID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 11, room.ID)
	require.NotNil(t, room.ArticleID)
	assert.Equal(t, 5, *room.ArticleID)
}

func TestCreateOrGetRoomLostRaceRereads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`SELECT .* FROM chat_rooms`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO chat_rooms`).WillReturnRows(sqlmock.NewRows(roomCols))
	mock.ExpectQuery(`SELECT .* FROM chat_rooms`).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(12, 1, 2, nil, time.Now()))

	room, created, err := repo.CreateOrGetRoom(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 12, room.ID)
}

func TestCreateOrGetRoomRejectsSelf(t *testing.T) {
	db, _ := newMockDB(t)
	_, _, err := NewRoomRepo(db).CreateOrGetRoom(context.Background(), 3, 3, nil)
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestGetRoomNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM chat_rooms WHERE id=\$1`).WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := NewRoomRepo(db).GetRoom(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListRoomsForUserSetsPeer(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`ORDER BY last_activity DESC`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(append(roomCols, "last_activity")).
			AddRow(20, 2, 7, nil, now, now).
			AddRow(21, 1, 2, nil, now.Add(-time.Hour), now.Add(-time.Hour)))

	rooms, err := NewRoomRepo(db).ListRoomsForUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 7, rooms[0].PeerID)
	assert.Equal(t, 1, rooms[1].PeerID)
}

func TestMessageCreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)
	now := time.Now()
	cols := []string{"id", "room_id", "sender_id", "body", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO chat_messages (room_id, sender_id, body)`)).
		WithArgs(10, 1, "hi").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 10, 1, "hi", now))
	mock.ExpectQuery(`FROM chat_messages WHERE room_id=\$1 ORDER BY created_at ASC`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 10, 1, "hi", now))

	msg, err := repo.CreateMessage(context.Background(), 10, 1, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Body)

	msgs, err := repo.ListRoomMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msg, msgs[len(msgs)-1])
}

var articleCols = []string{"id", "author_id", "title", "content", "price_per_day", "created_at", "updated_at"}

func TestListArticlesBuildsFilters(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`c.name = \$1\).*a.title ILIKE \$2 ORDER BY a.created_at DESC, a.id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("tools", "%drill%", 20, 0).
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(1, 2, "Power drill", "", 5, now, now))
	mock.ExpectQuery(`FROM article_categories ac`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "value"}).AddRow(1, "tools"))
	mock.ExpectQuery(`FROM article_addresses`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "value"}).AddRow(1, "Main st 1"))

	articles, err := NewArticleRepo(db).ListArticles(context.Background(), models.ArticleFilter{Category: "tools", Query: "drill", Limit: 20})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"tools"}, articles[0].Categories)
	assert.Equal(t, []string{"Main st 1"}, articles[0].Addresses)
}

func TestGetArticleNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM articles a WHERE a.id=\$1`).WithArgs(8).WillReturnError(sql.ErrNoRows)

	_, err := NewArticleRepo(db).GetArticle(context.Background(), 8)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestCreateArticleUpsertsCategories(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).WithArgs(1, "Tent", "2p tent", 7).
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(3, 1, "Tent", "2p tent", 7, now, now))
	mock.ExpectQuery(`INSERT INTO categories`).WithArgs("camping").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec(`INSERT INTO article_categories`).WithArgs(3, 4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO article_addresses`).WithArgs(3, "Lake rd").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	article, err := NewArticleRepo(db).CreateArticle(context.Background(), models.Article{
		AuthorID: 1, Title: "Tent", Content: "2p tent", PricePerDay: 7,
		Categories: []string{"camping"}, Addresses: []string{"Lake rd"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, article.ID)
	assert.Equal(t, []string{"camping"}, article.Categories)
}

func TestBookmarkAddIsIdempotentInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookmarkRepo(db)

	mock.ExpectQuery(`SELECT id, user_id FROM bookmarks WHERE user_id=\$1`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(6, 1))
	mock.ExpectExec(`INSERT INTO bookmark_articles .* ON CONFLICT DO NOTHING`).WithArgs(6, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddArticle(context.Background(), 1, 3))
}

func TestBookmarkMissingCollection(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM bookmarks`).WithArgs(5).WillReturnError(sql.ErrNoRows)

	err := NewBookmarkRepo(db).RemoveArticle(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
}

func TestReviewListNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`FROM reviews WHERE article_id=\$1 ORDER BY created_at DESC`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "article_id", "author_id", "rating", "content", "created_at"}).
			AddRow(2, 2, 1, 5, "great", now).
			AddRow(1, 2, 3, 3, "ok", now.Add(-time.Hour)))

	reviews, err := NewReviewRepo(db).ListReviews(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "great", reviews[0].Content)
}
