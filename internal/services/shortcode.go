// Package services – short codes
//
// Short codes are the compact, human-shareable identifiers that the mini app
// and deep links use to reference a published video (for example "VID0042").
// Codes are sequential by default so they stay short and predictable; when
// the sequence cannot be read a random four-digit suffix is used instead.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
	"github.com/cineflix/videogate-bot/internal/repo"
)

// GenerateShortCode returns the next candidate short code: the prefix
// followed by a zero-padded sequence number derived from the current video
// count. When the count is unavailable a random suffix in [1000, 9999] is
// produced so publishing never blocks on the sequence.
func GenerateShortCode(ctx context.Context, db *gorm.DB, prefix string) string {
	prefix = strings.ToUpper(prefix)
	count, err := repo.CountVideos(ctx, db)
	if err != nil {
		return fmt.Sprintf("%s%d", prefix, 1000+rand.IntN(9000))
	}
	return fmt.Sprintf("%s%04d", prefix, count+1)
}

// randomShortCode returns a collision-retry candidate with a random suffix.
func randomShortCode(prefix string) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(prefix), 1000+rand.IntN(9000))
}

// ResolveShortCode looks up the video registered under the given code.
// Matching is case-insensitive; codes are stored uppercase. Returns
// ErrVideoNotFound when no video carries the code.
func ResolveShortCode(ctx context.Context, db *gorm.DB, code string) (*domain.Video, error) {
	v, err := repo.GetVideoByCode(ctx, db, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}
