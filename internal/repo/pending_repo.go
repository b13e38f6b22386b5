// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PendingMessages model, which tracks transient bot prompts per user so the
// next relay can sweep them away.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cineflix/videogate-bot/internal/domain"
)

// ReplacePendingMessages overwrites the user's pending message list with the
// given IDs. The previous list is discarded wholesale; ordering is preserved
// as given.
func ReplacePendingMessages(ctx context.Context, db *gorm.DB, userID int64, messageIDs []int64) error {
	rec := &domain.PendingMessages{
		UserID:     userID,
		MessageIDs: datatypes.NewJSONSlice(messageIDs),
		UpdatedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_ids", "updated_at"}),
	}).Create(rec).Error
}

// GetPendingMessages returns the user's recorded message IDs in stored order,
// or an empty slice when nothing is pending.
func GetPendingMessages(ctx context.Context, db *gorm.DB, userID int64) ([]int64, error) {
	var rec domain.PendingMessages
	err := db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.MessageIDs, nil
}

// ClearPendingMessages deletes the user's pending record after a cleanup
// sweep. Clearing an absent record is not an error.
func ClearPendingMessages(ctx context.Context, db *gorm.DB, userID int64) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PendingMessages{}).Error
}
