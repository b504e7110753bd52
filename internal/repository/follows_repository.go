package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warbler/internal/model"
)

// FollowsRepository defines follow edge persistence operations.
type FollowsRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
}

type followsRepository struct {
	db *gorm.DB
}

// NewFollowsRepository creates a new follows repository.
func NewFollowsRepository(db *gorm.DB) FollowsRepository {
	return &followsRepository{db: db}
}

// Create adds the edge. An existing edge is left as is.
func (r *followsRepository) Create(ctx context.Context, followerID, followedID uint) error {
	edge := &model.Follows{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Omit("Followed", "Follower").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge).Error
	return translate(err, nil)
}

// Delete removes the edge if present.
func (r *followsRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Follows{}).Error
	return translate(err, nil)
}

func (r *followsRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follows{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, nil)
	}
	return n > 0, nil
}
