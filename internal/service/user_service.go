package service

import (
	"context"
	"fmt"
	"time"

	"warbler/internal/auth"
	"warbler/internal/cache"
	"warbler/internal/model"
	"warbler/internal/repository"
)

const (
	userCacheTTL       = 5 * time.Minute
	searchLimit        = 50
	profileMessageSize = 100
)

// UserService exposes user read operations and account removal.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetProfile(ctx context.Context, id uint) (*model.Profile, error)
	Search(ctx context.Context, query string) ([]model.User, error)
	Followers(ctx context.Context, id uint) ([]model.User, error)
	Following(ctx context.Context, id uint) ([]model.User, error)
	DeleteAccount(ctx context.Context) error
}

type userService struct {
	repo        repository.UserRepository
	messageRepo repository.MessageRepository
	sessions    auth.SessionStoreInterface
	cache       *cache.Client
}

// NewUserService builds a UserService with repositories, sessions and cache.
func NewUserService(
	repo repository.UserRepository,
	messageRepo repository.MessageRepository,
	sessions auth.SessionStoreInterface,
	cache *cache.Client,
) UserService {
	return &userService{repo: repo, messageRepo: messageRepo, sessions: sessions, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// GetProfile assembles the user page: the user, recent messages and counts.
func (s *userService) GetProfile(ctx context.Context, id uint) (*model.Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByUser(ctx, id, profileMessageSize)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	messageCount, err := s.repo.CountMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	followers, err := s.repo.CountFollowers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.repo.CountFollowing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	return &model.Profile{
		User:           user,
		Messages:       messages,
		MessageCount:   messageCount,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

func (s *userService) Search(ctx context.Context, query string) ([]model.User, error) {
	return s.repo.Search(ctx, query, searchLimit)
}

// Followers lists who follows id. Any signed-in user may look.
func (s *userService) Followers(ctx context.Context, id uint) ([]model.User, error) {
	if _, err := auth.RequireActor(ctx); err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Followers(ctx, id)
}

// Following lists who id follows. Any signed-in user may look.
func (s *userService) Following(ctx context.Context, id uint) ([]model.User, error) {
	if _, err := auth.RequireActor(ctx); err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Following(ctx, id)
}

// DeleteAccount removes the actor's account together with their messages and
// follow edges, then ends the current session.
func (s *userService) DeleteAccount(ctx context.Context) error {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, actor.UserID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(actor.UserID))

	if actor.SessionID != "" {
		if err := s.sessions.Delete(ctx, actor.SessionID); err != nil {
			return err
		}
	}
	return nil
}
