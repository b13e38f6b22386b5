// Package services – PublishService
//
// This file implements video publishing. When the bot sees a new post with a
// video attachment in a channel it administers, it registers the post under a
// freshly allocated short code and notifies the admin with a ready-to-share
// deep link. The channel post itself is never modified.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/telegram"
	"github.com/cineflix/videogate-bot/internal/templates"
)

// maxCodeAttempts bounds collision retries during code allocation. The first
// attempt uses the sequential code, the rest use random suffixes.
const maxCodeAttempts = 3

// PublishService registers channel posts as gated videos.
type PublishService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Bot is used to notify the admin.
	Bot BotAPI
	// AdminID receives the new-video notification.
	AdminID int64
	// BotUsername is the bot's own @-less username, used in deep links.
	BotUsername string
	// CodePrefix prefixes every allocated short code.
	CodePrefix string

	titleCaser cases.Caser
}

// NewPublishService constructs a PublishService.
func NewPublishService(db *gorm.DB, bot BotAPI, adminID int64, botUsername, codePrefix string) *PublishService {
	return &PublishService{
		DB:          db,
		Bot:         bot,
		AdminID:     adminID,
		BotUsername: strings.TrimPrefix(botUsername, "@"),
		CodePrefix:  codePrefix,
		titleCaser:  cases.Title(language.Und, cases.NoLower),
	}
}

// HandleChannelPost registers a channel post carrying a video, document, or
// animation attachment. Posts without an attachment are ignored. Returns the
// stored video on success.
func (s *PublishService) HandleChannelPost(ctx context.Context, msg *telegram.Message) (*domain.Video, error) {
	if msg == nil || !hasAttachment(msg) {
		return nil, nil
	}

	title := s.titleFor(msg)
	video, err := s.register(ctx, msg, title)
	if err != nil {
		return nil, err
	}

	log.Info().Str("short_code", video.ShortCode).Str("title", title).
		Int64("channel_id", video.ChannelID).Msg("new video registered")

	s.notifyAdmin(ctx, video, msg.Chat.Title)
	return video, nil
}

// register allocates a short code and inserts the video, retrying with random
// codes on unique-index collisions.
func (s *PublishService) register(ctx context.Context, msg *telegram.Message, title string) (*domain.Video, error) {
	code := GenerateShortCode(ctx, s.DB, s.CodePrefix)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if attempt > 0 {
			code = randomShortCode(s.CodePrefix)
		}
		v := &domain.Video{
			ShortCode: code,
			ChannelID: msg.Chat.ID,
			MessageID: msg.ID,
			Title:     title,
		}
		err := repo.CreateVideo(ctx, s.DB, v)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, ErrCodeExhausted
}

// titleFor derives a display title: attachment filename first, then caption,
// then a fixed fallback.
func (s *PublishService) titleFor(msg *telegram.Message) string {
	title := strings.TrimSpace(msg.Caption)
	if title == "" {
		title = "Untitled"
	}
	for _, meta := range []*telegram.FileMeta{msg.Video, msg.Document, msg.Animation} {
		if meta != nil && meta.FileName != "" {
			title = meta.FileName
			break
		}
	}
	return s.titleCaser.String(title)
}

func (s *PublishService) notifyAdmin(ctx context.Context, v *domain.Video, channelTitle string) {
	text := templates.NewVideoNotice(v.Title, v.ShortCode, channelTitle, s.BotUsername, v.MessageID)
	_, err := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:    s.AdminID,
		Text:      text,
		ParseMode: templates.ParseMode,
	})
	if err != nil {
		log.Error().Err(err).Str("short_code", v.ShortCode).Msg("failed to notify admin of new video")
	}
}

func hasAttachment(msg *telegram.Message) bool {
	return msg.Video != nil || msg.Document != nil || msg.Animation != nil
}
