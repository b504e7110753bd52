package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "warbler/internal/errors"
	"warbler/internal/model"
	"warbler/internal/testutil"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()

	u := &model.User{Username: "testuser", Email: "test@test.com", Password: "HASHED_PASSWORD"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)

	byName, err := repo.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_FreshUserHasNoActivity(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()
	u := testutil.CreateUser(t, gormDB, "testuser")

	messages, err := repo.CountMessages(ctx, u.ID)
	require.NoError(t, err)
	followers, err := repo.CountFollowers(ctx, u.ID)
	require.NoError(t, err)
	following, err := repo.CountFollowing(ctx, u.ID)
	require.NoError(t, err)

	assert.Zero(t, messages)
	assert.Zero(t, followers)
	assert.Zero(t, following)
}

func TestUserRepository_CreateConstraintViolations(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()
	testutil.CreateUser(t, gormDB, "testuser")

	tests := []struct {
		name string
		user *model.User
	}{
		{"duplicate username", &model.User{Username: "testuser", Email: "new@test.com", Password: "x"}},
		{"duplicate email", &model.User{Username: "new", Email: "testuser@test.com", Password: "x"}},
		{"missing username", &model.User{Email: "blank@test.com", Password: "x"}},
		{"missing email", &model.User{Username: "blank", Password: "x"}},
		{"missing password", &model.User{Username: "nopass", Email: "nopass@test.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
		})
	}
	assert.Equal(t, int64(1), testutil.Count(t, gormDB, &model.User{}))
}

func TestUserRepository_WithTransactionRollsBack(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx UserRepository) error {
		require.NoError(t, tx.Create(ctx, &model.User{Username: "a", Email: "a@x.com", Password: "x"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, testutil.Count(t, gormDB, &model.User{}))
}

func TestUserRepository_Search(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()
	for _, name := range []string{"alice", "alicia", "bob"} {
		testutil.CreateUser(t, gormDB, name)
	}

	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"", 0, []string{"alice", "alicia", "bob"}},
		{"ali", 0, []string{"alice", "alicia"}},
		{"ali", 1, []string{"alice"}},
		{"zed", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			users, err := repo.Search(ctx, tt.query, tt.limit)
			require.NoError(t, err)
			var got []string
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFollowsRepository_Edges(t *testing.T) {
	gormDB := testutil.NewDB(t)
	users := NewUserRepository(gormDB)
	follows := NewFollowsRepository(gormDB)
	ctx := context.Background()
	alice := testutil.CreateUser(t, gormDB, "alice")
	bob := testutil.CreateUser(t, gormDB, "bob")
	carol := testutil.CreateUser(t, gormDB, "carol")

	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID), "repeat follow is a no-op")
	require.NoError(t, follows.Create(ctx, carol.ID, bob.ID))
	assert.Equal(t, int64(2), testutil.Count(t, gormDB, &model.Follows{}))

	ok, err := follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = follows.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok, "edges are directed")

	followers, err := users.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := users.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	n, err := users.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, follows.Delete(ctx, alice.ID, bob.ID))
	require.NoError(t, follows.Delete(ctx, alice.ID, bob.ID), "unfollowing twice is a no-op")
	ok, err = follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = follows.Create(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
}

func TestMessageRepository_RoundTrip(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewMessageRepository(gormDB)
	ctx := context.Background()
	owner := testutil.CreateUser(t, gormDB, "testuser")

	before := time.Now().UTC().Add(-time.Second)
	m := &model.Message{Text: "Hello world", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got.Text)
	assert.False(t, got.Timestamp.IsZero())
	assert.True(t, got.Timestamp.After(before))
	require.NotNil(t, got.User)
	assert.Equal(t, owner.ID, got.User.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestMessageRepository_CreateConstraintViolations(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewMessageRepository(gormDB)
	ctx := context.Background()
	owner := testutil.CreateUser(t, gormDB, "testuser")

	tests := []struct {
		name    string
		message *model.Message
	}{
		{"no owner", &model.Message{Text: "orphan"}},
		{"unknown owner", &model.Message{Text: "orphan", UserID: 9999}},
		{"no text", &model.Message{UserID: owner.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.message)
			assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
		})
	}
	assert.Zero(t, testutil.Count(t, gormDB, &model.Message{}))
}

func TestMessageRepository_ListAndTimeline(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewMessageRepository(gormDB)
	follows := NewFollowsRepository(gormDB)
	ctx := context.Background()
	alice := testutil.CreateUser(t, gormDB, "alice")
	bob := testutil.CreateUser(t, gormDB, "bob")
	carol := testutil.CreateUser(t, gormDB, "carol")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	post := func(owner *model.User, text string, offset time.Duration) {
		require.NoError(t, repo.Create(ctx, &model.Message{Text: text, UserID: owner.ID, Timestamp: base.Add(offset)}))
	}
	post(alice, "alice 1", 0)
	post(bob, "bob 1", time.Minute)
	post(carol, "carol 1", 2*time.Minute)
	post(alice, "alice 2", 3*time.Minute)
	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))

	own, err := repo.ListByUser(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "alice 2", own[0].Text)

	limited, err := repo.ListByUser(ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	timeline, err := repo.Timeline(ctx, alice.ID, 100)
	require.NoError(t, err)
	var texts []string
	for _, m := range timeline {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"alice 2", "bob 1", "alice 1"}, texts)
}

func TestMessageRepository_Delete(t *testing.T) {
	gormDB := testutil.NewDB(t)
	repo := NewMessageRepository(gormDB)
	ctx := context.Background()
	owner := testutil.CreateUser(t, gormDB, "testuser")
	m := &model.Message{Text: "bye", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, m))

	require.NoError(t, repo.Delete(ctx, m.ID))
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), apperrors.ErrMessageNotFound)
	assert.Zero(t, testutil.Count(t, gormDB, &model.Message{}))
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	gormDB := testutil.NewDB(t)
	users := NewUserRepository(gormDB)
	messages := NewMessageRepository(gormDB)
	follows := NewFollowsRepository(gormDB)
	ctx := context.Background()
	alice := testutil.CreateUser(t, gormDB, "alice")
	bob := testutil.CreateUser(t, gormDB, "bob")
	require.NoError(t, messages.Create(ctx, &model.Message{Text: "hi", UserID: alice.ID}))
	require.NoError(t, messages.Create(ctx, &model.Message{Text: "yo", UserID: bob.ID}))
	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, follows.Create(ctx, bob.ID, alice.ID))

	require.NoError(t, users.Delete(ctx, alice.ID))
	assert.ErrorIs(t, users.Delete(ctx, alice.ID), apperrors.ErrUserNotFound)

	assert.Equal(t, int64(1), testutil.Count(t, gormDB, &model.Message{}))
	assert.Zero(t, testutil.Count(t, gormDB, &model.Follows{}))
}

func newMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestUserRepository_MySQLDuplicateEntry(t *testing.T) {
	gormDB, mock := newMySQLMock(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'testuser' for key 'users.idx_users_username'"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{Username: "testuser", Email: "test@test.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_MySQLForeignKeyFailure(t *testing.T) {
	gormDB, mock := newMySQLMock(t)
	repo := NewMessageRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `messages`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Message{Text: "orphan"})
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_MySQLNotFound(t *testing.T) {
	gormDB, mock := newMySQLMock(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
