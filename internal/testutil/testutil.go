// Package testutil provides in-memory backing stores for tests.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"warbler/internal/cache"
	"warbler/internal/db"
	"warbler/internal/model"
)

// NewDB opens a migrated in-memory sqlite database with foreign keys on.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:", "silent")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// NewRedis starts a miniredis server and returns a cache client bound to it.
func NewRedis(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

// CreateUser inserts a user with a placeholder hash.
func CreateUser(t *testing.T, gormDB *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Email:    username + "@test.com",
		Password: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
	}
	require.NoError(t, gormDB.Create(u).Error)
	return u
}

// Count returns the number of rows for the given model.
func Count(t *testing.T, gormDB *gorm.DB, value any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gormDB.Model(value).Count(&n).Error)
	return n
}
