package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "warbler/internal/errors"
	"warbler/internal/model"
)

// MessageRepository defines message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uint) (*model.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]model.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]model.Message, error)
	Delete(ctx context.Context, id uint) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo MessageRepository) error) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message. Missing owner or text is rejected by the store.
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(message).Error, nil)
}

// FindByID finds a message by ID with its owner loaded.
func (r *messageRepository) FindByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		return nil, translate(err, apperrors.ErrMessageNotFound)
	}
	return &message, nil
}

// ListByUser returns a user's messages, most recent first.
func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	var messages []model.Message
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, translate(err, nil)
	}
	return messages, nil
}

// Timeline returns messages by userID and everyone userID follows, most recent first.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]model.Message, error) {
	followed := r.db.Model(&model.Follows{}).Select("followed_id").Where("follower_id = ?", userID)

	var messages []model.Message
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, translate(err, nil)
	}
	return messages, nil
}

// Delete removes a message by ID.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Message{}, id)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *messageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo MessageRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &messageRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
