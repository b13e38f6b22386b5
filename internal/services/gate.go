// Package services – GateService
//
// This file implements the membership gate, the core user-facing workflow of
// the bot. A video request entering through a deep link is walked through a
// fixed pipeline: ban check, anti-spam cooldown, short-code resolution,
// membership verification, and finally either a join prompt or the video
// relay. The relay copies the channel post into the private chat without a
// forward header and maintains the per-user pending-message list so stale
// prompts can be swept before the next delivery.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/telegram"
	"github.com/cineflix/videogate-bot/internal/templates"
)

// sweepPace is the gap between consecutive Bot API calls in loops (cleanup
// deletions) to stay clear of flood limits.
const sweepPace = 50 * time.Millisecond

// verifyPause is the cosmetic delay between the "Verifying..." interstitial
// and the membership re-check.
const verifyPause = time.Second

// cooldownEntry holds a per-user limiter and the last time it was touched.
type cooldownEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// GateOptions configures a GateService.
type GateOptions struct {
	MiniAppURL     string
	VideoLoadDelay time.Duration // cosmetic pacing before a relay
	Cooldown       time.Duration // minimum gap between fresh requests per user
	MaxCleanup     int           // cap on swept messages per relay
	AntiSpam       bool
	AutoCleanup    bool
	ProtectContent bool
}

// GateService drives the gating workflow: welcome, request, verify, relay,
// and cleanup. It owns the in-memory anti-spam state; everything else lives
// in the store.
type GateService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Bot is the Telegram API used for all outbound messages.
	Bot BotAPI
	// Members performs channel-membership checks.
	Members *MembershipService

	opts GateOptions

	// Anti-spam buckets, keyed by user ID. Guarded by mu; idle entries are
	// evicted opportunistically after a threshold of lookups.
	mu       sync.Mutex
	buckets  map[int64]*cooldownEntry
	lookupN  uint64
	entryTTL time.Duration

	// sleep is swapped out in tests so delays do not slow the suite.
	sleep func(ctx context.Context, d time.Duration)
}

// NewGateService constructs a GateService.
func NewGateService(db *gorm.DB, bot BotAPI, members *MembershipService, opts GateOptions) *GateService {
	if opts.MaxCleanup <= 0 {
		opts.MaxCleanup = 50
	}
	return &GateService{
		DB:       db,
		Bot:      bot,
		Members:  members,
		opts:     opts,
		buckets:  make(map[int64]*cooldownEntry),
		entryTTL: 10 * time.Minute,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// allow reports whether a fresh request from the user is outside the
// cooldown window. Verification retries never pass through here.
func (s *GateService) allow(userID int64) bool {
	if !s.opts.AntiSpam || s.opts.Cooldown <= 0 {
		return true
	}
	now := time.Now()

	s.mu.Lock()
	// Evict idle buckets after a threshold of lookups, before touching the
	// requested one so stale entries cannot be refreshed into survival.
	s.lookupN++
	if s.lookupN >= 5000 {
		for id, e := range s.buckets {
			if now.Sub(e.lastSeen) >= s.entryTTL {
				delete(s.buckets, id)
			}
		}
		s.lookupN = 0
	}

	e, ok := s.buckets[userID]
	if !ok {
		e = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(s.opts.Cooldown), 1)}
		s.buckets[userID] = e
	}
	e.lastSeen = now
	lim := e.limiter
	s.mu.Unlock()

	return lim.Allow()
}

// Welcome handles a bare /start: records the user and sends the greeting
// with the channel roster and mini-app opener. Banned users get the ban
// notice instead.
func (s *GateService) Welcome(ctx context.Context, from *telegram.User, chatID int64) error {
	if banned, err := repo.IsBanned(ctx, s.DB, from.ID); err != nil {
		log.Error().Err(err).Int64("user_id", from.ID).Msg("ban lookup failed")
	} else if banned {
		s.send(ctx, chatID, templates.Banned, nil)
		return ErrBanned
	}

	if err := repo.UpsertUser(ctx, s.DB, from.ID, from.Username, from.FirstName); err != nil {
		log.Error().Err(err).Int64("user_id", from.ID).Msg("user upsert failed")
	}

	channels, err := repo.ListActiveChannels(ctx, s.DB)
	if err != nil {
		return err
	}
	roster := make([]templates.ChannelStatus, 0, len(channels))
	for _, ch := range channels {
		roster = append(roster, templates.ChannelStatus{Name: ch.Name, Username: ch.Username, ChatID: ch.ChatID})
	}

	s.send(ctx, chatID, templates.Welcome(from.FirstName, roster), templates.WelcomeKeyboard(s.opts.MiniAppURL, roster))
	return nil
}

// Request handles a deep-link video request. The pipeline is fixed: ban
// check, cooldown, code resolution, membership check, then join prompt or
// relay. Requests inside the cooldown window are dropped without any
// response so a tap storm produces exactly one answer.
func (s *GateService) Request(ctx context.Context, from *telegram.User, chatID int64, code string) error {
	if banned, err := repo.IsBanned(ctx, s.DB, from.ID); err != nil {
		log.Error().Err(err).Int64("user_id", from.ID).Msg("ban lookup failed")
	} else if banned {
		s.send(ctx, chatID, templates.Banned, nil)
		return ErrBanned
	}

	if !s.allow(from.ID) {
		log.Debug().Int64("user_id", from.ID).Str("code", code).Msg("request dropped by cooldown")
		return ErrRateLimited
	}

	if err := repo.UpsertUser(ctx, s.DB, from.ID, from.Username, from.FirstName); err != nil {
		log.Error().Err(err).Int64("user_id", from.ID).Msg("user upsert failed")
	}

	video, err := ResolveShortCode(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			s.send(ctx, chatID, templates.VideoNotFound, nil)
		}
		return err
	}

	verdict, err := s.Members.CheckAll(ctx, from.ID)
	if err != nil {
		return err
	}
	if !verdict.AllJoined {
		return s.promptJoin(ctx, from.ID, chatID, video.ShortCode, verdict)
	}

	return s.relay(ctx, from.ID, chatID, video)
}

// Verify handles a press of the verify button. The ban check runs before
// anything else, so a ban issued after the prompt went out still holds. The
// gate message is edited to an interstitial, membership is re-checked after a
// short pause, and the user either receives the video or an updated checklist
// on the same message. Verification never consumes a cooldown token, so
// retrying right after joining always works.
func (s *GateService) Verify(ctx context.Context, from *telegram.User, gateMsg *telegram.Message, code string) error {
	chatID := gateMsg.Chat.ID

	if banned, err := repo.IsBanned(ctx, s.DB, from.ID); err != nil {
		log.Error().Err(err).Int64("user_id", from.ID).Msg("ban lookup failed")
	} else if banned {
		s.send(ctx, chatID, templates.Banned, nil)
		return ErrBanned
	}

	if _, err := s.Bot.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: gateMsg.ID,
		Text:      templates.Verifying,
		ParseMode: templates.ParseMode,
	}); err != nil {
		log.Debug().Err(err).Int64("user_id", from.ID).Msg("verify interstitial edit failed")
	}
	s.sleep(ctx, verifyPause)

	verdict, err := s.Members.CheckAll(ctx, from.ID)
	if err != nil {
		return err
	}

	if !verdict.AllJoined {
		_, err := s.Bot.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   gateMsg.ID,
			Text:        templates.ForceJoin(verdict.Channels),
			ParseMode:   templates.ParseMode,
			ReplyMarkup: templates.JoinKeyboard(code, verdict.Channels),
		})
		return err
	}

	// Passed. The gate message has served its purpose.
	if err := s.Bot.DeleteMessage(ctx, chatID, gateMsg.ID); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("gate message delete failed")
	}

	video, err := ResolveShortCode(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			s.send(ctx, chatID, templates.VideoNotFound, nil)
		}
		return err
	}
	return s.relay(ctx, from.ID, chatID, video)
}

// promptJoin sends the join checklist and records it as the user's pending
// prompt so the next relay sweeps it away.
func (s *GateService) promptJoin(ctx context.Context, userID, chatID int64, code string, verdict Verdict) error {
	msg, err := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        templates.ForceJoin(verdict.Channels),
		ParseMode:   templates.ParseMode,
		ReplyMarkup: templates.JoinKeyboard(code, verdict.Channels),
	})
	if err != nil {
		return err
	}
	if err := repo.ReplacePendingMessages(ctx, s.DB, userID, []int64{msg.ID}); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("pending record write failed")
	}
	return nil
}

// relay delivers the video: loading notice, cosmetic delay, cleanup sweep,
// protected copy, success note, then bookkeeping. The watch counter moves
// only after the copy succeeded.
func (s *GateService) relay(ctx context.Context, userID, chatID int64, video *domain.Video) error {
	loading, err := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:    chatID,
		Text:      templates.LoadingVideo,
		ParseMode: templates.ParseMode,
	})
	if err != nil {
		return err
	}

	s.sleep(ctx, s.opts.VideoLoadDelay)

	if s.opts.AutoCleanup {
		s.sweep(ctx, userID, chatID)
	}

	if err := s.Bot.DeleteMessage(ctx, chatID, loading.ID); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("loading message delete failed")
	}

	copied, err := s.Bot.CopyMessage(ctx, telegram.CopyMessageParams{
		ChatID:         chatID,
		FromChatID:     video.ChannelID,
		MessageID:      video.MessageID,
		ProtectContent: s.opts.ProtectContent,
	})
	if err != nil {
		log.Error().Err(err).Str("short_code", video.ShortCode).Int64("user_id", userID).
			Msg("video copy failed")
		s.send(ctx, chatID, templates.VideoNotFound, nil)
		return err
	}

	success, err := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        templates.VideoReady,
		ParseMode:   templates.ParseMode,
		ReplyMarkup: templates.BackToAppKeyboard(s.opts.MiniAppURL),
	})

	pending := []int64{copied.ID}
	if err == nil {
		pending = append(pending, success.ID)
	}
	if err := repo.ReplacePendingMessages(ctx, s.DB, userID, pending); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("pending record write failed")
	}
	if err := repo.IncrementWatchCount(ctx, s.DB, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("watch count update failed")
	}

	log.Info().Str("short_code", video.ShortCode).Int64("user_id", userID).Msg("video relayed")
	return nil
}

// sweep deletes the user's recorded pending messages, capped and paced, and
// clears the record. Per-message failures are tolerated; one summary line is
// logged for the whole pass.
func (s *GateService) sweep(ctx context.Context, userID, chatID int64) {
	ids, err := repo.GetPendingMessages(ctx, s.DB, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("pending record read failed")
		return
	}
	if len(ids) == 0 {
		return
	}
	if len(ids) > s.opts.MaxCleanup {
		ids = ids[:s.opts.MaxCleanup]
	}

	deleted, failed := 0, 0
	for _, id := range ids {
		if err := s.Bot.DeleteMessage(ctx, chatID, id); err != nil {
			failed++
		} else {
			deleted++
		}
		s.sleep(ctx, sweepPace)
	}

	if err := repo.ClearPendingMessages(ctx, s.DB, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("pending record clear failed")
	}
	log.Debug().Int64("user_id", userID).Int("deleted", deleted).Int("failed", failed).
		Msg("pending messages swept")
}

// send fires a best-effort notice; failures are logged, not propagated.
func (s *GateService) send(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboardMarkup) {
	_, err := s.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   templates.ParseMode,
		ReplyMarkup: kb,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}
