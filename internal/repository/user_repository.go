package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "warbler/internal/errors"
	"warbler/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Search(ctx context.Context, query string, limit int) ([]model.User, error)
	Delete(ctx context.Context, id uint) error
	CountMessages(ctx context.Context, id uint) (int64, error)
	Followers(ctx context.Context, id uint) ([]model.User, error)
	Following(ctx context.Context, id uint) ([]model.User, error)
	CountFollowers(ctx context.Context, id uint) (int64, error)
	CountFollowing(ctx context.Context, id uint) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Omit("Messages").Create(user).Error, nil)
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// Search matches usernames containing query. An empty query lists everyone.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.User, error) {
	q := r.db.WithContext(ctx).Order("id")
	if query != "" {
		q = q.Where("username LIKE ?", "%"+query+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, translate(err, nil)
	}
	return users, nil
}

// Delete removes the user. Messages and follow edges go with it through the
// foreign key cascades.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) CountMessages(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("user_id = ?", id).Count(&n).Error
	return n, translate(err, nil)
}

// Followers lists users with an edge pointing at id.
func (r *userRepository) Followers(ctx context.Context, id uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", id).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return users, nil
}

// Following lists users id has an edge to.
func (r *userRepository) Following(ctx context.Context, id uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", id).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return users, nil
}

func (r *userRepository) CountFollowers(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follows{}).Where("followed_id = ?", id).Count(&n).Error
	return n, translate(err, nil)
}

func (r *userRepository) CountFollowing(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Follows{}).Where("follower_id = ?", id).Count(&n).Error
	return n, translate(err, nil)
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &userRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
