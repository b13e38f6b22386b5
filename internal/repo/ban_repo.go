// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ban model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cineflix/videogate-bot/internal/domain"
)

// UpsertBan records a ban for the given user, overwriting the reason and
// timestamp when a record already exists.
func UpsertBan(ctx context.Context, db *gorm.DB, userID int64, reason string) error {
	b := &domain.Ban{
		UserID:   userID,
		Reason:   reason,
		BannedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "banned_at"}),
	}).Create(b).Error
}

// DeleteBan removes a user's ban record. Returns ErrNotFound when the user
// was not banned.
func DeleteBan(ctx context.Context, db *gorm.DB, userID int64) error {
	res := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Ban{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsBanned reports whether the user has a ban record. A DB failure counts as
// not banned so that a store outage cannot lock every user out; the caller
// is expected to log the error.
func IsBanned(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var b domain.Ban
	err := db.WithContext(ctx).First(&b, "user_id = ?", userID).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// ListBans returns all ban records ordered by ban time descending.
func ListBans(ctx context.Context, db *gorm.DB) ([]domain.Ban, error) {
	var out []domain.Ban
	err := db.WithContext(ctx).Order("banned_at desc").Find(&out).Error
	return out, err
}

// CountBans returns the number of banned users.
func CountBans(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Ban{}).Count(&total).Error
	return total, err
}
