// Package services – AdminService
//
// This file implements the operator-facing side of the bot: statistics,
// required-channel management, bans, and broadcast fan-out. Methods return
// data or sentinel errors; rendering the results into Telegram messages is
// the dispatcher's job. Broadcast is the one exception, as it sends directly
// while iterating the user base.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/telegram"
	"github.com/cineflix/videogate-bot/internal/templates"
)

// broadcastPace is the gap between consecutive broadcast sends.
const broadcastPace = 50 * time.Millisecond

// AdminService implements the admin command set.
type AdminService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Bot is used for broadcast fan-out.
	Bot BotAPI
	// AdminID is the sole authorized operator.
	AdminID int64

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB, bot BotAPI, adminID int64) *AdminService {
	return &AdminService{DB: db, Bot: bot, AdminID: adminID, sleep: sleepCtx}
}

// IsAdmin reports whether the user is the configured operator.
func (s *AdminService) IsAdmin(userID int64) bool {
	return userID == s.AdminID
}

// Stats returns the aggregate counters shown by /stats.
func (s *AdminService) Stats(ctx context.Context) (templates.StatsView, error) {
	var (
		view templates.StatsView
		err  error
	)
	if view.TotalUsers, err = repo.CountUsers(ctx, s.DB); err != nil {
		return view, err
	}
	if view.TotalVideos, err = repo.CountVideos(ctx, s.DB); err != nil {
		return view, err
	}
	if view.ActiveChannels, err = repo.CountActiveChannels(ctx, s.DB); err != nil {
		return view, err
	}
	if view.BannedUsers, err = repo.CountBans(ctx, s.DB); err != nil {
		return view, err
	}
	return view, nil
}

// AddChannel registers a new required channel at the end of the display
// order. The username keeps its "@" prefix; an empty name falls back to the
// username. Returns ErrChannelExists on a duplicate username.
func (s *AdminService) AddChannel(ctx context.Context, username string, chatID int64, name string) error {
	username = strings.TrimSpace(username)
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}
	_, err := repo.CreateChannel(ctx, s.DB, username, chatID, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return ErrChannelExists
	}
	return err
}

// RemoveChannel deactivates a required channel. The row is kept so published
// videos that reference the channel keep resolving. Returns
// ErrChannelNotFound when no active channel carries the username.
func (s *AdminService) RemoveChannel(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	err := repo.DeactivateChannel(ctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrChannelNotFound
	}
	return err
}

// ListChannels returns the active channels in display order.
func (s *AdminService) ListChannels(ctx context.Context) ([]templates.ChannelStatus, error) {
	channels, err := repo.ListActiveChannels(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]templates.ChannelStatus, 0, len(channels))
	for _, ch := range channels {
		out = append(out, templates.ChannelStatus{Name: ch.Name, Username: ch.Username, ChatID: ch.ChatID})
	}
	return out, nil
}

// Ban records a ban for the user. Banning twice refreshes the reason.
func (s *AdminService) Ban(ctx context.Context, userID int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "No reason provided"
	}
	return repo.UpsertBan(ctx, s.DB, userID, reason)
}

// Unban lifts a user's ban. Returns ErrNotBanned when no record exists.
func (s *AdminService) Unban(ctx context.Context, userID int64) error {
	err := repo.DeleteBan(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotBanned
	}
	return err
}

// BanList returns the ban roster, most recent first.
func (s *AdminService) BanList(ctx context.Context) ([]templates.BanEntry, error) {
	bans, err := repo.ListBans(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]templates.BanEntry, 0, len(bans))
	for _, b := range bans {
		out = append(out, templates.BanEntry{UserID: b.UserID, Reason: b.Reason})
	}
	return out, nil
}

// Broadcast sends the wrapped text to every known user, paced to stay under
// flood limits. Per-user failures (blocked bots, deleted accounts) are
// counted, not fatal. Returns the sent and failed counts.
func (s *AdminService) Broadcast(ctx context.Context, text string) (sent, failed int, err error) {
	ids, err := repo.ListUserIDs(ctx, s.DB)
	if err != nil {
		return 0, 0, err
	}

	body := templates.BroadcastBody(text)
	for _, id := range ids {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		_, sendErr := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:    id,
			Text:      body,
			ParseMode: templates.ParseMode,
		})
		if sendErr != nil {
			failed++
		} else {
			sent++
		}
		s.sleep(ctx, broadcastPace)
	}

	log.Info().Int("sent", sent).Int("failed", failed).Msg("broadcast finished")
	return sent, failed, nil
}
