package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/cineflix/videogate-bot/internal/domain"
	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/telegram"
	"github.com/cineflix/videogate-bot/internal/templates"
)

func newGate(t *testing.T, db *gorm.DB, bot *fakeBot, opts GateOptions) *GateService {
	t.Helper()
	g := NewGateService(db, bot, NewMembershipService(db, bot), opts)
	g.sleep = noSleep
	return g
}

func seedVideo(t *testing.T, db *gorm.DB, code string) *domain.Video {
	t.Helper()
	v := &domain.Video{ShortCode: code, ChannelID: -500, MessageID: 321, Title: "Feature"}
	if err := repo.CreateVideo(context.Background(), db, v); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return v
}

func joinedUser() *telegram.User {
	return &telegram.User{ID: 10, Username: "viewer", FirstName: "Viewer"}
}

func TestRequest_BannedShortCircuits(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	if err := repo.UpsertBan(ctx, db, 10, "spam"); err != nil {
		t.Fatalf("seed ban: %v", err)
	}

	err := g.Request(ctx, joinedUser(), 10, "VID0001")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	texts := bot.sentTexts()
	if len(texts) != 1 || texts[0] != templates.Banned {
		t.Fatalf("expected only the ban notice, got %v", texts)
	}
	if len(bot.copies) != 0 {
		t.Fatal("banned user must never receive content")
	}
}

func TestVerify_BannedShortCircuits(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	if _, err := repo.CreateChannel(ctx, db, "@main", -700, "Main"); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	bot.memberStatus[-700] = "member"

	// Ban issued after the join prompt went out; the stale verify button
	// must not bypass it even though membership would pass.
	if err := repo.UpsertBan(ctx, db, 10, "spam"); err != nil {
		t.Fatalf("seed ban: %v", err)
	}

	gateMsg := &telegram.Message{ID: 55, Chat: telegram.Chat{ID: 10}}
	err := g.Verify(ctx, joinedUser(), gateMsg, "VID0001")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	if len(bot.copies) != 0 {
		t.Fatal("banned user must never receive content")
	}
	if len(bot.edits) != 0 {
		t.Fatalf("ban check must run before the interstitial edit, got %d edits", len(bot.edits))
	}
	texts := bot.sentTexts()
	if len(texts) != 1 || texts[0] != templates.Banned {
		t.Fatalf("expected only the ban notice, got %v", texts)
	}
	u, err := repo.GetUser(ctx, db, 10)
	if err == nil && u.WatchCount != 0 {
		t.Fatalf("watch count must not move for a banned user, got %d", u.WatchCount)
	}
}

func TestRequest_CooldownDropsSecondRequest(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{
		AntiSpam: true,
		Cooldown: time.Minute,
	})
	ctx := context.Background()
	seedVideo(t, db, "VID0001")
	bot.memberStatus[-101] = "member"

	if err := g.Request(ctx, joinedUser(), 10, "VID0001"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	before := len(bot.sentTexts()) + len(bot.copies)

	if err := g.Request(ctx, joinedUser(), 10, "VID0001"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	after := len(bot.sentTexts()) + len(bot.copies)
	if after != before {
		t.Fatalf("cooldown drop must be silent: %d -> %d calls", before, after)
	}
}

func TestRequest_UnknownCode(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})

	err := g.Request(context.Background(), joinedUser(), 10, "VID9999")
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	texts := bot.sentTexts()
	if len(texts) != 1 || texts[0] != templates.VideoNotFound {
		t.Fatalf("expected the not-found notice, got %v", texts)
	}
}

func TestRequest_BlockedSendsJoinPromptNeverContent(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	if _, err := repo.CreateChannel(ctx, db, "@gatech", -900, "Gate"); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	// No membership scripted, so the user counts as left.

	if err := g.Request(ctx, joinedUser(), 10, "VID0001"); err != nil {
		t.Fatalf("request: %v", err)
	}

	if len(bot.copies) != 0 {
		t.Fatal("blocked request must not relay content")
	}
	if len(bot.sent) != 1 || !strings.Contains(bot.sent[0].Text, "Content Locked") {
		t.Fatalf("expected the join prompt, got %+v", bot.sentTexts())
	}
	kb := bot.sent[0].ReplyMarkup
	if kb == nil || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected join row plus verify row, got %+v", kb)
	}
	verify := kb.InlineKeyboard[1][0]
	if verify.CallbackData != "verify_VID0001" {
		t.Fatalf("verify callback wrong: %+v", verify)
	}

	// The prompt is recorded so the next relay sweeps it.
	pending, err := repo.GetPendingMessages(ctx, db, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending prompt, got %v (err=%v)", pending, err)
	}
}

func TestRequest_RelayDeliversAndCounts(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{
		AutoCleanup:    true,
		ProtectContent: true,
		MaxCleanup:     50,
	})
	ctx := context.Background()

	video := seedVideo(t, db, "VID0001")
	if _, err := repo.CreateChannel(ctx, db, "@main", -700, "Main"); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	bot.memberStatus[-700] = "member"

	// Stale prompt from a previous gate encounter.
	if err := repo.ReplacePendingMessages(ctx, db, 10, []int64{777}); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	if err := g.Request(ctx, joinedUser(), 10, "VID0001"); err != nil {
		t.Fatalf("request: %v", err)
	}

	if len(bot.copies) != 1 {
		t.Fatalf("expected 1 copy, got %d", len(bot.copies))
	}
	cp := bot.copies[0]
	if cp.FromChatID != video.ChannelID || cp.MessageID != video.MessageID || !cp.ProtectContent {
		t.Fatalf("copy params wrong: %+v", cp)
	}

	// The stale prompt and the loading message were both deleted.
	if len(bot.deleted) != 2 || bot.deleted[0] != 777 {
		t.Fatalf("unexpected deletions: %v", bot.deleted)
	}

	texts := bot.sentTexts()
	if len(texts) != 2 || texts[0] != templates.LoadingVideo || texts[1] != templates.VideoReady {
		t.Fatalf("unexpected messages: %v", texts)
	}

	// Bookkeeping: the new content and success note become the pending set,
	// and the watch counter moved.
	pending, err := repo.GetPendingMessages(ctx, db, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending ids, got %v (err=%v)", pending, err)
	}
	u, err := repo.GetUser(ctx, db, 10)
	if err != nil || u.WatchCount != 1 {
		t.Fatalf("expected watch count 1, got %+v (err=%v)", u, err)
	}
}

func TestRequest_CopyFailureSkipsBookkeeping(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	bot.copyErr = errors.New("message to copy not found")

	if err := g.Request(ctx, joinedUser(), 10, "VID0001"); err == nil {
		t.Fatal("expected relay error")
	}

	texts := bot.sentTexts()
	if len(texts) != 2 || texts[1] != templates.VideoNotFound {
		t.Fatalf("expected loading then not-found, got %v", texts)
	}
	u, err := repo.GetUser(ctx, db, 10)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.WatchCount != 0 {
		t.Fatalf("watch count must not move on failed copy, got %d", u.WatchCount)
	}
}

func TestVerify_StillMissingEditsChecklist(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	if _, err := repo.CreateChannel(ctx, db, "@main", -700, "Main"); err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	gateMsg := &telegram.Message{ID: 55, Chat: telegram.Chat{ID: 10}}
	if err := g.Verify(ctx, joinedUser(), gateMsg, "VID0001"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if len(bot.edits) != 2 {
		t.Fatalf("expected interstitial then checklist edit, got %d edits", len(bot.edits))
	}
	if bot.edits[0].Text != templates.Verifying {
		t.Fatalf("first edit should be the interstitial: %q", bot.edits[0].Text)
	}
	if !strings.Contains(bot.edits[1].Text, "Content Locked") || bot.edits[1].ReplyMarkup == nil {
		t.Fatalf("second edit should be the checklist: %+v", bot.edits[1])
	}
	if len(bot.copies) != 0 {
		t.Fatal("failed verification must not relay")
	}
}

func TestVerify_PassedDeletesGateAndRelays(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{})
	ctx := context.Background()

	seedVideo(t, db, "VID0001")
	if _, err := repo.CreateChannel(ctx, db, "@main", -700, "Main"); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	bot.memberStatus[-700] = "member"

	gateMsg := &telegram.Message{ID: 55, Chat: telegram.Chat{ID: 10}}
	if err := g.Verify(ctx, joinedUser(), gateMsg, "VID0001"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if len(bot.deleted) == 0 || bot.deleted[0] != 55 {
		t.Fatalf("gate message should be deleted first: %v", bot.deleted)
	}
	if len(bot.copies) != 1 {
		t.Fatalf("expected relay after verification, got %d copies", len(bot.copies))
	}
	// Re-verifying after delivery is idempotent at the workflow level: the
	// user just gets the video again, never an error.
	if err := g.Verify(ctx, joinedUser(), gateMsg, "VID0001"); err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if len(bot.copies) != 2 {
		t.Fatalf("expected second relay, got %d copies", len(bot.copies))
	}
}

func TestSweep_RespectsCap(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	g := newGate(t, db, bot, GateOptions{AutoCleanup: true, MaxCleanup: 3})
	ctx := context.Background()

	ids := []int64{1, 2, 3, 4, 5}
	if err := repo.ReplacePendingMessages(ctx, db, 10, ids); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	g.sweep(ctx, 10, 10)

	if len(bot.deleted) != 3 {
		t.Fatalf("expected 3 deletions under cap, got %v", bot.deleted)
	}
	// The record is cleared even when the cap truncated the pass.
	pending, err := repo.GetPendingMessages(ctx, db, 10)
	if err != nil || pending != nil {
		t.Fatalf("expected cleared record, got %v (err=%v)", pending, err)
	}
}

func TestAllow_DisabledNeverBlocks(t *testing.T) {
	db := newTestDB(t)
	g := newGate(t, db, newFakeBot(), GateOptions{AntiSpam: false, Cooldown: time.Minute})

	for i := 0; i < 5; i++ {
		if !g.allow(1) {
			t.Fatal("disabled anti-spam must never block")
		}
	}
}
