// Package services – MembershipService
//
// This file implements the channel-membership check that decides whether a
// user may receive gated content. Every active required channel is queried
// through the Bot API; a user passes only when every single check succeeds
// with a joined status. Lookup failures are treated as not joined so an API
// outage can never open the gate.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/templates"
)

// joinedStatuses are the chat-member statuses that count as joined.
var joinedStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// Verdict is the outcome of a full membership check.
type Verdict struct {
	// AllJoined is true when the user passed every required channel.
	AllJoined bool
	// Channels lists every required channel in display order, each annotated
	// with the user's membership.
	Channels []templates.ChannelStatus
}

// MembershipService checks users against the active required channels.
type MembershipService struct {
	// DB is the GORM handle used to load the channel roster.
	DB *gorm.DB
	// Bot is the Telegram API used for chat-member lookups.
	Bot BotAPI
}

// NewMembershipService constructs a MembershipService.
func NewMembershipService(db *gorm.DB, bot BotAPI) *MembershipService {
	return &MembershipService{DB: db, Bot: bot}
}

// CheckAll verifies the user against every active channel in position order.
// An empty roster yields AllJoined=true. Per-channel API errors are logged
// and counted as not joined.
func (s *MembershipService) CheckAll(ctx context.Context, userID int64) (Verdict, error) {
	channels, err := repo.ListActiveChannels(ctx, s.DB)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{AllJoined: true, Channels: make([]templates.ChannelStatus, 0, len(channels))}
	for _, ch := range channels {
		joined := s.isMember(ctx, ch.ChatID, userID)
		if !joined {
			v.AllJoined = false
		}
		v.Channels = append(v.Channels, templates.ChannelStatus{
			Name:     ch.Name,
			Username: ch.Username,
			ChatID:   ch.ChatID,
			Joined:   joined,
		})
	}
	return v, nil
}

func (s *MembershipService) isMember(ctx context.Context, chatID, userID int64) bool {
	m, err := s.Bot.GetChatMember(ctx, chatID, userID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).
			Msg("chat member lookup failed, treating as not joined")
		return false
	}
	return joinedStatuses[m.Status]
}
