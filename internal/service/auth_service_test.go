package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/auth"
	apperrors "warbler/internal/errors"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/internal/testutil"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) CountMessages(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Followers(ctx context.Context, id uint) ([]model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Following(ctx context.Context, id uint) ([]model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) CountFollowers(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountFollowing(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// WithTransaction runs fn against the mock itself.
func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	m.Called(ctx)
	return fn(ctx, m)
}

// MockSessionStore is a mock implementation of SessionStoreInterface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func testAuthOptions() AuthOptions {
	return AuthOptions{
		BcryptCost:            bcrypt.MinCost,
		DefaultImageURL:       "/static/images/default-pic.png",
		DefaultHeaderImageURL: "/static/images/warbler-hero.jpg",
	}
}

func newMockAuthService(t *testing.T, repo *MockUserRepository, sessions *MockSessionStore) AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, auth.NewTokenService("test-secret", time.Hour), sessions, NewCredentialValidator(), testAuthOptions())
	require.NoError(t, err)
	return svc
}

func TestAuthService_Signup(t *testing.T) {
	duplicate := fmt.Errorf("%w: %w", apperrors.ErrConstraintViolation, fmt.Errorf("UNIQUE constraint failed: users.username"))

	tests := []struct {
		name          string
		input         SignupInput
		setupMock     func(*MockUserRepository)
		expectedError error
		wantImage     string
	}{
		{
			name:  "successful signup uses default image",
			input: SignupInput{Username: "testuser", Email: "test@test.com", Password: "HASHED_PASSWORD"},
			setupMock: func(m *MockUserRepository) {
				m.On("WithTransaction", mock.Anything).Return()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			wantImage: "/static/images/default-pic.png",
		},
		{
			name:  "custom image kept",
			input: SignupInput{Username: "testuser", Email: "test@test.com", Password: "pw", ImageURL: "https://img.example.com/a.png"},
			setupMock: func(m *MockUserRepository) {
				m.On("WithTransaction", mock.Anything).Return()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			wantImage: "https://img.example.com/a.png",
		},
		{
			name:          "empty password",
			input:         SignupInput{Username: "testuser", Email: "test@test.com"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrEmptyPassword,
		},
		{
			name:          "password too long",
			input:         SignupInput{Username: "testuser", Email: "test@test.com", Password: strings.Repeat("x", 73)},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrPasswordTooLong,
		},
		{
			name:          "image url is not a url",
			input:         SignupInput{Username: "testuser", Email: "test@test.com", Password: "pw", ImageURL: "not a url"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidImageURL,
		},
		{
			name:  "store rejects duplicate",
			input: SignupInput{Username: "testuser", Email: "test@test.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("WithTransaction", mock.Anything).Return()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(duplicate)
			},
			expectedError: apperrors.ErrConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service := newMockAuthService(t, mockRepo, new(MockSessionStore))

			user, err := service.Signup(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Username, user.Username)
				assert.Equal(t, tt.wantImage, user.ImageURL)
				assert.NotEqual(t, tt.input.Password, user.Password)
				ok, err := user.CheckPassword(tt.input.Password)
				require.NoError(t, err)
				assert.True(t, ok)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)
	alice := &model.User{ID: 1, Username: "alice", Email: "a@x.com", Password: string(hashed)}

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository, *MockSessionStore)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "alice",
			password: "pw1",
			setupMock: func(mRepo *MockUserRepository, mSessions *MockSessionStore) {
				mRepo.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
				mSessions.On("Create", mock.Anything, uint(1)).Return("sess-1", nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			setupMock: func(mRepo *MockUserRepository, mSessions *MockSessionStore) {
				mRepo.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "bob",
			password: "pw1",
			setupMock: func(mRepo *MockUserRepository, mSessions *MockSessionStore) {
				mRepo.On("FindByUsername", mock.Anything, "bob").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockSessions := new(MockSessionStore)
			tt.setupMock(mockRepo, mockSessions)
			service := newMockAuthService(t, mockRepo, mockSessions)

			result, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.Token)
				assert.Equal(t, "sess-1", result.SessionID)
				assert.Equal(t, alice.ID, result.User.ID)
			}

			mockRepo.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}

func TestAuthService_AuthenticateMalformedStoredHash(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "testuser").
		Return(&model.User{ID: 1, Username: "testuser", Password: "testuser"}, nil)
	service := newMockAuthService(t, mockRepo, new(MockSessionStore))

	res, err := service.Authenticate(context.Background(), "testuser", "HASHED_PASSWORD")
	assert.ErrorIs(t, err, apperrors.ErrMalformedHash)
	assert.False(t, res.OK())
}

// authFixture wires the real repositories and session store over sqlite and miniredis.
type authFixture struct {
	service  AuthService
	users    repository.UserRepository
	sessions *auth.SessionStore
	tokens   *auth.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gormDB := testutil.NewDB(t)
	client, _ := testutil.NewRedis(t)
	users := repository.NewUserRepository(gormDB)
	sessions := auth.NewSessionStore(client, time.Hour)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc, err := NewAuthService(users, tokens, sessions, NewCredentialValidator(), testAuthOptions())
	require.NoError(t, err)
	return &authFixture{service: svc, users: users, sessions: sessions, tokens: tokens}
}

func TestAuthService_SignupAndAuthenticateScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	alice, err := f.service.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", alice.Password)

	res, err := f.service.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, alice.ID, res.User().ID)

	res, err = f.service.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Nil(t, res.User())

	res, err = f.service.Authenticate(ctx, "bob", "pw1")
	require.NoError(t, err)
	assert.False(t, res.OK())
}

func TestAuthService_SignupDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Signup(ctx, SignupInput{Username: "testuser", Email: "test@test.com", Password: "HASHED_PASSWORD"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input SignupInput
	}{
		{"same username", SignupInput{Username: "testuser", Email: "other@test.com", Password: "pw"}},
		{"same email", SignupInput{Username: "other", Email: "test@test.com", Password: "pw"}},
		{"missing username", SignupInput{Email: "blank@test.com", Password: "pw"}},
		{"missing email", SignupInput{Username: "blank", Password: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.service.Signup(ctx, tt.input)
			assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
			assert.Nil(t, user)
		})
	}

	users, err := f.users.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_ResolveSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Signup(ctx, SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	login, err := f.service.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	actor, ok := f.service.ResolveSession(ctx, login.Token)
	require.True(t, ok)
	assert.Equal(t, login.User.ID, actor.UserID)
	assert.Equal(t, login.SessionID, actor.SessionID)

	t.Run("garbage token", func(t *testing.T) {
		_, ok := f.service.ResolveSession(ctx, "garbage")
		assert.False(t, ok)
	})

	t.Run("token for another user on this session", func(t *testing.T) {
		forged, err := f.tokens.Issue(login.User.ID+1, login.SessionID)
		require.NoError(t, err)
		_, ok := f.service.ResolveSession(ctx, forged)
		assert.False(t, ok)
	})

	t.Run("logout makes the token anonymous", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, login.SessionID))
		_, ok := f.service.ResolveSession(ctx, login.Token)
		assert.False(t, ok)
	})

	t.Run("deleted user is anonymous", func(t *testing.T) {
		again, err := f.service.Login(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.NoError(t, f.users.Delete(ctx, again.User.ID))
		_, ok := f.service.ResolveSession(ctx, again.Token)
		assert.False(t, ok)
	})
}
