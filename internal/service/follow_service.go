package service

import (
	"context"
	"fmt"

	"warbler/internal/auth"
	"warbler/internal/errors"
	"warbler/internal/metrics"
	"warbler/internal/repository"
)

// FollowService handles follow and unfollow actions.
type FollowService interface {
	Follow(ctx context.Context, targetID uint) error
	Unfollow(ctx context.Context, targetID uint) error
}

type followService struct {
	userRepo    repository.UserRepository
	followsRepo repository.FollowsRepository
}

// NewFollowService creates a new follow service.
func NewFollowService(userRepo repository.UserRepository, followsRepo repository.FollowsRepository) FollowService {
	return &followService{userRepo: userRepo, followsRepo: followsRepo}
}

// Follow makes the actor follow targetID. Following twice is a no-op.
func (s *followService) Follow(ctx context.Context, targetID uint) error {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}
	if actor.UserID == targetID {
		return errors.ErrCannotFollowSelf
	}
	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.followsRepo.Create(ctx, actor.UserID, targetID); err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	metrics.FollowsTotal.WithLabelValues(metrics.ActionFollow).Inc()
	return nil
}

// Unfollow removes the actor's edge to targetID if there is one.
func (s *followService) Unfollow(ctx context.Context, targetID uint) error {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.followsRepo.Delete(ctx, actor.UserID, targetID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	metrics.FollowsTotal.WithLabelValues(metrics.ActionUnfollow).Inc()
	return nil
}
