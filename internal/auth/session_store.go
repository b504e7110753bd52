package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"warbler/internal/cache"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	Create(ctx context.Context, userID uint) (sessionID string, err error)
	Lookup(ctx context.Context, sessionID string) (userID uint, ok bool, err error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionStore keeps session id to user id mappings in Redis.
type SessionStore struct {
	cache *cache.Client
	ttl   time.Duration
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

// Create opens a session for userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()
	payload := []byte(strconv.FormatUint(uint64(userID), 10))
	if err := s.cache.Persist(ctx, sessionKeyPrefix+sessionID, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

// Lookup returns the user bound to sessionID. A missing or expired session
// reports ok=false with a nil error.
func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	if sessionID == "" {
		return 0, false, nil
	}
	data, err := s.cache.Lookup(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, cache.ErrMiss) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup session: %w", err)
	}

	uid, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil || uid == 0 {
		return 0, false, nil
	}
	return uint(uid), true, nil
}

// Delete ends a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Remove(ctx, sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
