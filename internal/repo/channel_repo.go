// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Channel
// model.
//
// Channels are never deleted: RemoveChannel flips the Active flag so the
// handle stays reserved and ordinal positions remain stable. Active channels
// are always listed in position order, which is the order membership prompts
// display them in.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
)

// ListActiveChannels returns all active channels ordered by position
// ascending. An empty result is normal when no channels are configured.
func ListActiveChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error) {
	var out []domain.Channel
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("position asc").
		Find(&out).Error
	return out, err
}

// CountActiveChannels returns the number of active channels.
func CountActiveChannels(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Channel{}).
		Where("active = ?", true).
		Count(&total).Error
	return total, err
}

// CreateChannel inserts a new active channel at position max+1. Returns
// ErrDuplicate when the username is already registered (active or removed).
func CreateChannel(ctx context.Context, db *gorm.DB, username string, chatID int64, name string) (*domain.Channel, error) {
	if name == "" {
		name = username
	}

	var maxPos int
	row := struct{ Position int }{}
	err := db.WithContext(ctx).Model(&domain.Channel{}).
		Select("position").
		Order("position desc").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	maxPos = row.Position

	ch := &domain.Channel{
		Username: username,
		ChatID:   chatID,
		Name:     name,
		Position: maxPos + 1,
		Active:   true,
		AddedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(ch).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return ch, nil
}

// DeactivateChannel soft-removes a channel by username. Returns ErrNotFound
// when no active channel with that handle exists.
func DeactivateChannel(ctx context.Context, db *gorm.DB, username string) error {
	res := db.WithContext(ctx).Model(&domain.Channel{}).
		Where("username = ? AND active = ?", username, true).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
