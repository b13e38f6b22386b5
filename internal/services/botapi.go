package services

import (
	"context"

	"github.com/cineflix/videogate-bot/internal/telegram"
)

// BotAPI is the slice of the Telegram client the services need. It is
// satisfied by *telegram.Client and replaced with fakes in tests.
type BotAPI interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (*telegram.Message, error)
	EditMessageText(ctx context.Context, p telegram.EditMessageTextParams) (*telegram.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	CopyMessage(ctx context.Context, p telegram.CopyMessageParams) (*telegram.MessageID, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
}
