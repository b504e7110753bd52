package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/auth"
	apperrors "warbler/internal/errors"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

// SignupInput carries the fields a new account is created from.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// AuthResult is the outcome of Authenticate: either a user or nothing.
type AuthResult struct {
	user *model.User
}

// OK reports whether authentication succeeded.
func (r AuthResult) OK() bool {
	return r.user != nil
}

// User returns the authenticated user, or nil.
func (r AuthResult) User() *model.User {
	return r.user
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *model.User
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// AuthOptions configures hashing and signup defaults.
type AuthOptions struct {
	BcryptCost            int
	DefaultImageURL       string
	DefaultHeaderImageURL string
}

// AuthService handles signup, authentication and sessions.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (AuthResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	StartSession(ctx context.Context, user *model.User) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ResolveSession(ctx context.Context, token string) (auth.Actor, bool)
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *auth.TokenService
	sessions  auth.SessionStoreInterface
	validator *CredentialValidator
	opts      AuthOptions
	dummyHash []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenService,
	sessions auth.SessionStoreInterface,
	validator *CredentialValidator,
	opts AuthOptions,
) (AuthService, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown so both failure paths cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("warbler-unknown-user"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		sessions:  sessions,
		validator: validator,
		opts:      opts,
		dummyHash: dummy,
	}, nil
}

// Signup validates, hashes and stores a new user in one transaction.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := s.validator.ValidateSignup(in); err != nil {
		return nil, err
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = s.opts.DefaultImageURL
	}
	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		ImageURL:       imageURL,
		HeaderImageURL: s.opts.DefaultHeaderImageURL,
	}
	if err := user.SetPassword(in.Password, s.opts.BcryptCost); err != nil {
		return nil, err
	}

	err := s.userRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.UserRepository) error {
		return txRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.SignupsTotal.Inc()
	return user, nil
}

// Authenticate checks username and password. Unknown user and wrong password
// both produce an empty result; only store failures are errors.
func (s *authService) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return AuthResult{}, nil
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := user.CheckPassword(password)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, nil
	}
	return AuthResult{user: user}, nil
}

// Login authenticates and opens a session.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	res, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin(res.OK())
	if !res.OK() {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.StartSession(ctx, res.User())
}

// StartSession stores a session for user and issues its token.
func (s *authService) StartSession(ctx context.Context, user *model.User) (*LoginResult, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(user.ID, sessionID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &LoginResult{
		User:      user,
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
	}, nil
}

// Logout ends the session.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ResolveSession turns a session token into an actor. Anything short of a
// live session for an existing user is anonymous.
func (s *authService) ResolveSession(ctx context.Context, token string) (auth.Actor, bool) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return auth.Actor{}, false
	}

	userID, ok, err := s.sessions.Lookup(ctx, claims.SessionID())
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("session lookup failed")
		return auth.Actor{}, false
	}
	if !ok || userID != claims.UserID {
		return auth.Actor{}, false
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			log.Ctx(ctx).Warn().Err(err).Uint("user_id", userID).Msg("session user lookup failed")
		}
		return auth.Actor{}, false
	}
	return auth.Actor{UserID: userID, SessionID: claims.SessionID()}, true
}
