// Package templates renders every user-facing Telegram message and inline
// keyboard of the bot. Keeping the copy in one place makes the texts easy to
// review and keeps the service layer free of formatting concerns. All texts
// use Telegram's Markdown parse mode.
package templates

import (
	"fmt"
	"strings"
)

// ParseMode is the parse mode every rendered message is sent with.
const ParseMode = "Markdown"

// ChannelStatus is the display view of a required channel, optionally
// annotated with the user's membership after a check.
type ChannelStatus struct {
	Name     string
	Username string // with leading "@"
	ChatID   int64
	Joined   bool
}

// Fixed texts.
const (
	Verifying = "⏳ **Verifying...**\n\nPlease wait..."

	LoadingVideo = "⏳ **Loading your video...**\n\nপ্রস্তুত হচ্ছে... 🎬"

	VideoReady = "✅ **Enjoy Watching!** 🍿\n\nআরো content দেখতে App এ ফিরে যান!"

	VideoNotFound = "❌ **Video Not Found!**\n\n" +
		"এই video টি হয়তো remove করা হয়েছে বা link ভুল আছে।\n" +
		"অন্য video try করুন।"

	Banned = "🚫 You are banned from using this bot.\nContact admin for more info."

	Broadcasting = "📤 Broadcasting..."

	NoChannels = "No channels configured"

	NoBannedUsers = "No banned users"
)

// Help texts.
const (
	AdminHelp = `🎛️ **CINEFLIX Admin Panel**

**Channel Management:**
/addchannel @username chat_id - Add channel
/removechannel @username - Remove channel
/listchannels - Show all channels

**User Management:**
/ban user_id - Ban user
/unban user_id - Unban user
/banlist - Banned users

**Statistics:**
/stats - Bot stats
/broadcast message - Send to all

**Other:**
/getid - Get IDs
/help - Help`

	UserHelp = `🎬 **CINEFLIX Help**

**How to Watch:**
1. Open CINEFLIX App
2. Select video
3. Click "Watch Now"
4. Enjoy! 🍿

Need help? Contact admin!`
)

// Usage strings for malformed admin commands.
const (
	UsageBroadcast     = "**Usage:** `/broadcast Your message here`"
	UsageAddChannel    = "**Usage:** `/addchannel @username chat_id [name]`"
	UsageRemoveChannel = "**Usage:** `/removechannel @username`"
	UsageBan           = "**Usage:** `/ban user_id [reason]`"
	UsageUnban         = "**Usage:** `/unban user_id`"
	InvalidChatID      = "❌ Invalid chat_id"
	InvalidUserID      = "❌ Invalid user_id"
)

// Welcome renders the /start greeting with the current channel roster.
func Welcome(userName string, channels []ChannelStatus) string {
	return fmt.Sprintf(`🎬 **Welcome to CINEFLIX!**

Hello **%s**! 👋

আপনার সব পছন্দের Movies, Series এবং Exclusive Content এক জায়গায়!

📢 **প্রথমে আমাদের চ্যানেলগুলো Join করুন:**
%s

✨ **Features:**
✅ Unlimited Movies & Series
✅ HD Quality Downloads
✅ Regular Updates
✅ Fast Streaming

👇 নিচে App খুলুন এবং দেখা শুরু করুন!`, userName, ChannelBullets(channels))
}

// ForceJoin renders the gate prompt shown while required channels remain
// unjoined, with a per-channel checklist.
func ForceJoin(channels []ChannelStatus) string {
	return fmt.Sprintf(`🔒 **Content Locked!**

📢 **এই চ্যানেলগুলো Join করুন video দেখতে:**

%s

**Steps:**
1️⃣ উপরের সব channels join করুন
2️⃣ "✅ I Joined - Verify" ক্লিক করুন
3️⃣ Instant access পাবেন! 🎉`, ChannelChecklist(channels))
}

// ChannelBullets renders channels as a plain bullet list.
func ChannelBullets(channels []ChannelStatus) string {
	if len(channels) == 0 {
		return "No channels"
	}
	lines := make([]string, 0, len(channels))
	for _, ch := range channels {
		lines = append(lines, fmt.Sprintf("   • %s - %s", ch.displayName(), ch.Username))
	}
	return strings.Join(lines, "\n")
}

// ChannelChecklist renders channels as a numbered list with join marks.
func ChannelChecklist(channels []ChannelStatus) string {
	if len(channels) == 0 {
		return "No channels"
	}
	lines := make([]string, 0, len(channels))
	for i, ch := range channels {
		mark := "❌"
		if ch.Joined {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s (%s)", mark, i+1, ch.displayName(), ch.Username))
	}
	return strings.Join(lines, "\n")
}

func (ch ChannelStatus) displayName() string {
	if ch.Name != "" {
		return ch.Name
	}
	return ch.Username
}

// StatsView carries the aggregate counters shown by /stats.
type StatsView struct {
	TotalUsers     int64
	TotalVideos    int64
	ActiveChannels int64
	BannedUsers    int64
}

// Stats renders the /stats report.
func Stats(s StatsView) string {
	return fmt.Sprintf(`📊 **CINEFLIX Bot Statistics**

👥 Total Users: %d
🎬 Total Videos: %d
📢 Active Channels: %d
🚫 Banned Users: %d

🤖 Status: ✅ Running
🌐 Mini App: Active
⚡ Database: Connected
🔗 Short Code System: Active`, s.TotalUsers, s.TotalVideos, s.ActiveChannels, s.BannedUsers)
}

// BroadcastBody wraps the admin's text in the broadcast frame sent to users.
func BroadcastBody(text string) string {
	return "📢 **Broadcast:**\n\n" + text
}

// BroadcastResult renders the final status edit after a broadcast run.
func BroadcastResult(sent, failed int) string {
	return fmt.Sprintf("✅ **Broadcast Complete!**\n\n✔️ Sent: %d\n❌ Failed: %d", sent, failed)
}

// NewVideoNotice renders the admin notification sent after a channel post is
// registered, including the ready-to-share deep link.
func NewVideoNotice(title, shortCode, channelTitle, botUsername string, messageID int64) string {
	deepLink := fmt.Sprintf("https://t.me/%s?start=%s", botUsername, shortCode)
	if channelTitle == "" {
		channelTitle = "Channel"
	}
	return fmt.Sprintf(`📹 **New Video Added!**

📌 **Title:** %s

🔐 **Short Code:** `+"`%s`"+`

🆔 **Message ID:** `+"`%d`"+`

📢 **Channel:** %s

🔗 **Deep Link:**
`+"`%s`"+`

✅ Video saved! Use the short code in your mini app.
Users will click and watch directly!

**Mini App Link Format:**
t.me/%s?start=%s`, title, shortCode, messageID, channelTitle, deepLink, botUsername, shortCode)
}

// ChannelAdded confirms a successful /addchannel.
func ChannelAdded(username string) string {
	return fmt.Sprintf("✅ Channel **%s** added!", username)
}

// ChannelRemoved confirms a successful /removechannel.
func ChannelRemoved(username string) string {
	return fmt.Sprintf("✅ Channel **%s** removed!", username)
}

// ChannelNotFound reports a /removechannel miss.
const ChannelNotFound = "❌ Channel not found"

// ChannelAddFailed reports a failed /addchannel.
const ChannelAddFailed = "❌ Failed to add channel"

// ChannelList renders the /listchannels report.
func ChannelList(channels []ChannelStatus) string {
	var b strings.Builder
	b.WriteString("📢 **Active Channels:**\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&b, "%d. **%s**\n   Username: %s\n   Chat ID: `%d`\n\n", i+1, ch.displayName(), ch.Username, ch.ChatID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// UserBanned confirms a successful /ban.
func UserBanned(userID int64) string {
	return fmt.Sprintf("✅ User `%d` banned!", userID)
}

// UserUnbanned confirms a successful /unban.
func UserUnbanned(userID int64) string {
	return fmt.Sprintf("✅ User `%d` unbanned!", userID)
}

// UserNotBanned reports a /unban miss.
const UserNotBanned = "❌ User not found in ban list"

// BanFailed reports a failed /ban.
const BanFailed = "❌ Failed to ban user"

// BanEntry is one row of the /banlist report.
type BanEntry struct {
	UserID int64
	Reason string
}

// BanList renders the /banlist report.
func BanList(bans []BanEntry) string {
	var b strings.Builder
	b.WriteString("🚫 **Banned Users:**\n\n")
	for _, ban := range bans {
		reason := ban.Reason
		if reason == "" {
			reason = "N/A"
		}
		fmt.Fprintf(&b, "• User ID: `%d`\n  Reason: %s\n\n", ban.UserID, reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

// IDs renders the /getid report.
func IDs(userID, chatID int64) string {
	return fmt.Sprintf("**User ID:** `%d`\n**Chat ID:** `%d`", userID, chatID)
}
