package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/telegram"
)

// newTestDB opens a throwaway SQLite database with all models migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeBot is an in-memory BotAPI that records every call and lets tests
// script membership lookups and failures.
type fakeBot struct {
	mu sync.Mutex

	sent    []telegram.SendMessageParams
	edits   []telegram.EditMessageTextParams
	deleted []int64 // message IDs, in call order
	copies  []telegram.CopyMessageParams

	nextMsgID int64

	// memberStatus maps chat ID to the status GetChatMember returns.
	// Missing entries return "left".
	memberStatus map[int64]string
	// memberErr maps chat ID to a lookup error.
	memberErr map[int64]error

	// sendFail makes SendMessage fail for the given chat IDs.
	sendFail map[int64]bool
	copyErr  error
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		memberStatus: make(map[int64]string),
		memberErr:    make(map[int64]error),
		sendFail:     make(map[int64]bool),
	}
}

func (f *fakeBot) SendMessage(_ context.Context, p telegram.SendMessageParams) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendFail[p.ChatID] {
		return nil, errors.New("send failed")
	}
	f.nextMsgID++
	f.sent = append(f.sent, p)
	return &telegram.Message{ID: f.nextMsgID, Chat: telegram.Chat{ID: p.ChatID}, Text: p.Text}, nil
}

func (f *fakeBot) EditMessageText(_ context.Context, p telegram.EditMessageTextParams) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p)
	return &telegram.Message{ID: p.MessageID, Chat: telegram.Chat{ID: p.ChatID}, Text: p.Text}, nil
}

func (f *fakeBot) DeleteMessage(_ context.Context, _, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeBot) CopyMessage(_ context.Context, p telegram.CopyMessageParams) (*telegram.MessageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	f.nextMsgID++
	f.copies = append(f.copies, p)
	return &telegram.MessageID{ID: f.nextMsgID}, nil
}

func (f *fakeBot) GetChatMember(_ context.Context, chatID, _ int64) (*telegram.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memberErr[chatID]; err != nil {
		return nil, err
	}
	status, ok := f.memberStatus[chatID]
	if !ok {
		status = "left"
	}
	return &telegram.ChatMember{Status: status}, nil
}

func (f *fakeBot) AnswerCallbackQuery(_ context.Context, _ string) error { return nil }

// sentTexts returns the texts of all sent messages, in order.
func (f *fakeBot) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.Text)
	}
	return out
}

// noSleep replaces the pacing seam so tests run instantly.
func noSleep(context.Context, time.Duration) {}
