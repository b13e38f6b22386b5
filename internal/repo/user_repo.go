// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - UpsertUser never reports "already exists": first contact inserts the
//     row, later contacts refresh the mutable columns.
//   - On DB errors (connectivity issues, missing schema, etc.) the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cineflix/videogate-bot/internal/domain"
)

// UpsertUser inserts the user on first contact or refreshes the profile
// columns and last-active timestamp on every later contact. JoinedAt and
// WatchCount are only written on insert.
func UpsertUser(ctx context.Context, db *gorm.DB, id int64, username, firstName string) error {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           id,
		Username:     username,
		FirstName:    firstName,
		JoinedAt:     now,
		LastActiveAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_active_at"}),
	}).Create(u).Error
}

// GetUser fetches a single user by Telegram identifier, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the total number of known users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// ListUserIDs returns every known user identifier, used by the broadcast
// fan-out. Order is not significant.
func ListUserIDs(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Model(&domain.User{}).Pluck("id", &ids).Error
	return ids, err
}

// IncrementWatchCount bumps the user's relayed-video counter by one. Called
// only after a successful content copy.
func IncrementWatchCount(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("watch_count", gorm.Expr("watch_count + 1")).Error
}
