package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"warbler/internal/auth"
	"warbler/internal/errors"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

const timelineLimit = 100

// MessageService handles posting, reading and deleting messages.
type MessageService interface {
	Create(ctx context.Context, text string) (*model.Message, error)
	Get(ctx context.Context, id uint) (*model.Message, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Message, error)
	Timeline(ctx context.Context) ([]model.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageService struct {
	repo repository.MessageRepository
}

// NewMessageService creates a new message service.
func NewMessageService(repo repository.MessageRepository) MessageService {
	return &messageService{repo: repo}
}

// Create posts text as the actor. Empty text is left for the store to reject.
func (s *messageService) Create(ctx context.Context, text string) (*model.Message, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, errors.ErrMessageTooLong
	}

	message := &model.Message{Text: text, UserID: actor.UserID}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	metrics.MessagesCreatedTotal.Inc()
	return message, nil
}

func (s *messageService) Get(ctx context.Context, id uint) (*model.Message, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *messageService) ListByUser(ctx context.Context, userID uint) ([]model.Message, error) {
	return s.repo.ListByUser(ctx, userID, profileMessageSize)
}

// Timeline returns the latest messages from the actor and everyone they follow.
func (s *messageService) Timeline(ctx context.Context) ([]model.Message, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Timeline(ctx, actor.UserID, timelineLimit)
}

// Delete removes a message owned by the actor. Anyone else gets ErrForbidden
// and the row is left alone.
func (s *messageService) Delete(ctx context.Context, id uint) error {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.MessageRepository) error {
		message, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if message.UserID != actor.UserID {
			return errors.ErrForbidden
		}
		return txRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	metrics.MessagesDeletedTotal.Inc()
	return nil
}
