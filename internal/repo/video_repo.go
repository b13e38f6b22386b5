// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Video model.
//
// Short codes are stored uppercase and looked up case-insensitively by
// normalizing the input before querying. The unique index on short_code is
// the final arbiter against concurrent publishes producing the same
// candidate code: the losing insert surfaces ErrDuplicate and never
// overwrites the winner.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
)

// CreateVideo inserts a new video row. The short code is normalized to
// uppercase before the insert. Returns ErrDuplicate when the code is already
// taken.
func CreateVideo(ctx context.Context, db *gorm.DB, v *domain.Video) error {
	v.ShortCode = strings.ToUpper(strings.TrimSpace(v.ShortCode))
	if v.AddedAt.IsZero() {
		v.AddedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetVideoByCode fetches a video by its short code, case-insensitively.
// A miss returns ErrNotFound; it is an expected outcome, not a failure.
func GetVideoByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Video, error) {
	var v domain.Video
	err := db.WithContext(ctx).
		Where("short_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CountVideos returns the total number of published videos. The short-code
// generator derives its sequential counter from this value.
func CountVideos(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Video{}).Count(&total).Error
	return total, err
}

// ListVideosPage returns a paginated slice of videos ordered by publish time
// descending (newest first). Used by the mini-app catalog endpoint.
func ListVideosPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Video, error) {
	var out []domain.Video
	err := db.WithContext(ctx).
		Order("added_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
