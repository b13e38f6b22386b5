package templates

import (
	"strings"

	"github.com/cineflix/videogate-bot/internal/telegram"
)

// Button labels.
const (
	btnOpenApp    = "🎬 Open CINEFLIX App"
	btnVerifyJoin = "✅ I Joined - Verify"
	btnBackToApp  = "🔙 Back to App"
	btnHelp       = "❓ Help"
)

// joinURL turns "@channel" into its public t.me link.
func joinURL(username string) string {
	return "https://t.me/" + strings.TrimPrefix(username, "@")
}

func joinButton(ch ChannelStatus) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{
		Text: "📢 Join " + ch.displayName(),
		URL:  joinURL(ch.Username),
	}
}

// WelcomeKeyboard builds the /start keyboard: the mini-app opener, one join
// button per channel, and a help button.
func WelcomeKeyboard(miniAppURL string, channels []ChannelStatus) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(channels)+2)
	rows = append(rows, []telegram.InlineKeyboardButton{{
		Text:   btnOpenApp,
		WebApp: &telegram.WebAppInfo{URL: miniAppURL},
	}})
	for _, ch := range channels {
		rows = append(rows, []telegram.InlineKeyboardButton{joinButton(ch)})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{
		Text:         btnHelp,
		CallbackData: "help",
	}})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// JoinKeyboard builds the gate keyboard: a join button for every channel the
// user still misses, plus the verify button that re-checks membership for the
// given short code.
func JoinKeyboard(shortCode string, channels []ChannelStatus) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		if ch.Joined {
			continue
		}
		rows = append(rows, []telegram.InlineKeyboardButton{joinButton(ch)})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{
		Text:         btnVerifyJoin,
		CallbackData: "verify_" + shortCode,
	}})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// BackToAppKeyboard builds the single-button keyboard attached to the
// post-relay success message.
func BackToAppKeyboard(miniAppURL string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{{
			Text:   btnBackToApp,
			WebApp: &telegram.WebAppInfo{URL: miniAppURL},
		}}},
	}
}
