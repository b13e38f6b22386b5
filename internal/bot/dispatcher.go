// Package bot routes inbound Telegram updates to the service layer. The
// Dispatcher is transport-agnostic: the HTTP webhook handler decodes an
// update and hands it over, and everything from command parsing to reply
// rendering happens here.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cineflix/videogate-bot/internal/services"
	"github.com/cineflix/videogate-bot/internal/telegram"
	"github.com/cineflix/videogate-bot/internal/templates"
)

// API is the slice of the Telegram client the dispatcher needs. It is the
// service contract plus callback acknowledgement.
type API interface {
	services.BotAPI
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Dispatcher routes updates to the gate, publish, and admin services.
type Dispatcher struct {
	Bot     API
	Gate    *services.GateService
	Admin   *services.AdminService
	Publish *services.PublishService

	// BotUsername strips "@botname" suffixes from commands in groups.
	BotUsername string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(bot API, gate *services.GateService, admin *services.AdminService, publish *services.PublishService, botUsername string) *Dispatcher {
	return &Dispatcher{
		Bot:         bot,
		Gate:        gate,
		Admin:       admin,
		Publish:     publish,
		BotUsername: strings.TrimPrefix(botUsername, "@"),
	}
}

// HandleUpdate routes one update. Errors are logged here so webhook delivery
// is never failed back to Telegram; a retried update would only repeat the
// same outcome.
func (d *Dispatcher) HandleUpdate(ctx context.Context, upd telegram.Update) {
	var err error
	switch {
	case upd.ChannelPost != nil:
		_, err = d.Publish.HandleChannelPost(ctx, upd.ChannelPost)
	case upd.CallbackQuery != nil:
		err = d.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil && strings.HasPrefix(upd.Message.Text, "/"):
		err = d.handleCommand(ctx, upd.Message)
	default:
		return
	}

	if err != nil && !isExpected(err) {
		log.Error().Err(err).Int64("update_id", upd.ID).Msg("update handling failed")
	}
}

// isExpected filters workflow outcomes that are normal operation, not faults.
func isExpected(err error) bool {
	return errors.Is(err, services.ErrBanned) ||
		errors.Is(err, services.ErrRateLimited) ||
		errors.Is(err, services.ErrVideoNotFound)
}

// handleCommand parses and routes a slash command.
func (d *Dispatcher) handleCommand(ctx context.Context, msg *telegram.Message) error {
	fields := strings.Fields(msg.Text)
	cmd := d.normalizeCommand(fields[0])
	args := fields[1:]

	from := msg.From
	chatID := msg.Chat.ID

	switch cmd {
	case "/start":
		if len(args) > 0 {
			return d.Gate.Request(ctx, from, chatID, args[0])
		}
		return d.Gate.Welcome(ctx, from, chatID)

	case "/help":
		if d.Admin.IsAdmin(from.ID) {
			return d.reply(ctx, chatID, templates.AdminHelp, nil)
		}
		return d.reply(ctx, chatID, templates.UserHelp, nil)
	}

	// Everything below is admin-only. Unknown senders get silence, same as
	// unknown commands, so the command set is not probeable.
	if !d.Admin.IsAdmin(from.ID) {
		return nil
	}

	switch cmd {
	case "/stats":
		return d.cmdStats(ctx, chatID)
	case "/broadcast":
		return d.cmdBroadcast(ctx, chatID, args)
	case "/addchannel":
		return d.cmdAddChannel(ctx, chatID, args)
	case "/removechannel":
		return d.cmdRemoveChannel(ctx, chatID, args)
	case "/listchannels":
		return d.cmdListChannels(ctx, chatID)
	case "/ban":
		return d.cmdBan(ctx, chatID, args)
	case "/unban":
		return d.cmdUnban(ctx, chatID, args)
	case "/banlist":
		return d.cmdBanList(ctx, chatID)
	case "/getid":
		return d.reply(ctx, chatID, templates.IDs(from.ID, chatID), nil)
	}
	return nil
}

// normalizeCommand lowercases the command and strips an "@botname" suffix.
func (d *Dispatcher) normalizeCommand(raw string) string {
	cmd := strings.ToLower(raw)
	if i := strings.Index(cmd, "@"); i > 0 {
		if d.BotUsername == "" || strings.EqualFold(cmd[i+1:], d.BotUsername) {
			cmd = cmd[:i]
		}
	}
	return cmd
}

// handleCallback routes an inline button press. The query is acknowledged
// first so the client stops its spinner regardless of the outcome.
func (d *Dispatcher) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if err := d.Bot.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		log.Debug().Err(err).Str("callback_id", cb.ID).Msg("callback answer failed")
	}
	if cb.Message == nil {
		return nil
	}

	switch {
	case cb.Data == "help":
		text := templates.UserHelp
		if d.Admin.IsAdmin(cb.From.ID) {
			text = templates.AdminHelp
		}
		_, err := d.Bot.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.ID,
			Text:      text,
			ParseMode: templates.ParseMode,
		})
		return err

	case strings.HasPrefix(cb.Data, "verify_"):
		code := strings.TrimPrefix(cb.Data, "verify_")
		return d.Gate.Verify(ctx, &cb.From, cb.Message, code)
	}
	return nil
}

func (d *Dispatcher) cmdStats(ctx context.Context, chatID int64) error {
	view, err := d.Admin.Stats(ctx)
	if err != nil {
		return err
	}
	return d.reply(ctx, chatID, templates.Stats(view), nil)
}

func (d *Dispatcher) cmdBroadcast(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return d.reply(ctx, chatID, templates.UsageBroadcast, nil)
	}

	status, err := d.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID: chatID,
		Text:   templates.Broadcasting,
	})
	if err != nil {
		return err
	}

	sent, failed, err := d.Admin.Broadcast(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	_, err = d.Bot.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: status.ID,
		Text:      templates.BroadcastResult(sent, failed),
		ParseMode: templates.ParseMode,
	})
	return err
}

func (d *Dispatcher) cmdAddChannel(ctx context.Context, chatID int64, args []string) error {
	if len(args) < 2 {
		return d.reply(ctx, chatID, templates.UsageAddChannel, nil)
	}
	username := args[0]
	channelChatID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return d.reply(ctx, chatID, templates.InvalidChatID, nil)
	}
	name := strings.Join(args[2:], " ")

	if err := d.Admin.AddChannel(ctx, username, channelChatID, name); err != nil {
		if errors.Is(err, services.ErrChannelExists) {
			return d.reply(ctx, chatID, templates.ChannelAddFailed, nil)
		}
		return err
	}
	return d.reply(ctx, chatID, templates.ChannelAdded(username), nil)
}

func (d *Dispatcher) cmdRemoveChannel(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return d.reply(ctx, chatID, templates.UsageRemoveChannel, nil)
	}
	username := args[0]

	if err := d.Admin.RemoveChannel(ctx, username); err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			return d.reply(ctx, chatID, templates.ChannelNotFound, nil)
		}
		return err
	}
	return d.reply(ctx, chatID, templates.ChannelRemoved(username), nil)
}

func (d *Dispatcher) cmdListChannels(ctx context.Context, chatID int64) error {
	channels, err := d.Admin.ListChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return d.reply(ctx, chatID, templates.NoChannels, nil)
	}
	return d.reply(ctx, chatID, templates.ChannelList(channels), nil)
}

func (d *Dispatcher) cmdBanList(ctx context.Context, chatID int64) error {
	bans, err := d.Admin.BanList(ctx)
	if err != nil {
		return err
	}
	if len(bans) == 0 {
		return d.reply(ctx, chatID, templates.NoBannedUsers, nil)
	}
	return d.reply(ctx, chatID, templates.BanList(bans), nil)
}

func (d *Dispatcher) cmdBan(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return d.reply(ctx, chatID, templates.UsageBan, nil)
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return d.reply(ctx, chatID, templates.InvalidUserID, nil)
	}
	reason := strings.Join(args[1:], " ")

	if err := d.Admin.Ban(ctx, userID, reason); err != nil {
		return d.reply(ctx, chatID, templates.BanFailed, nil)
	}
	return d.reply(ctx, chatID, templates.UserBanned(userID), nil)
}

func (d *Dispatcher) cmdUnban(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return d.reply(ctx, chatID, templates.UsageUnban, nil)
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return d.reply(ctx, chatID, templates.InvalidUserID, nil)
	}

	if err := d.Admin.Unban(ctx, userID); err != nil {
		if errors.Is(err, services.ErrNotBanned) {
			return d.reply(ctx, chatID, templates.UserNotBanned, nil)
		}
		return err
	}
	return d.reply(ctx, chatID, templates.UserUnbanned(userID), nil)
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboardMarkup) error {
	_, err := d.Bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   templates.ParseMode,
		ReplyMarkup: kb,
	})
	return err
}
