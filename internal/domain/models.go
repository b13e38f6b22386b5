// Package domain defines the persistence models for users, videos, channels,
// bans, and pending prompt messages. These types are mapped with GORM and form
// the core data layer of the gating bot.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a Telegram user who has interacted with the bot at least
// once. Users are created on first contact and updated on every interaction;
// they are never deleted.
//
// Fields:
//   - ID: the Telegram user identifier (natural primary key).
//   - Username / FirstName: last known profile values, refreshed per contact.
//   - JoinedAt: first interaction time; never touched afterwards.
//   - LastActiveAt: refreshed on every interaction.
//   - WatchCount: number of successfully relayed videos.
type User struct {
	ID           int64     `json:"id"             gorm:"primaryKey;autoIncrement:false"`
	Username     string    `json:"username"       gorm:"type:varchar(64)"`
	FirstName    string    `json:"first_name"     gorm:"type:varchar(128)"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	WatchCount   int64     `json:"watch_count"    gorm:"not null;default:0"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Video maps a human-shareable short code to a message stored in a source
// channel. Rows are immutable once created: the short code is assigned at
// publish time and never changes, and the (channel, message) locator is the
// single source of truth for the relayed content.
//
// Fields:
//   - ShortCode: opaque uppercase code used in deep links; globally unique.
//   - ChannelID: chat identifier of the source channel holding the content.
//   - MessageID: message identifier within the source channel.
//   - Title: display title derived from the caption or file name.
//   - AddedAt: publish time.
type Video struct {
	ID        uint      `json:"-"          gorm:"primaryKey"`
	ShortCode string    `json:"short_code" gorm:"type:varchar(16);not null;uniqueIndex:ux_videos_short_code"`
	ChannelID int64     `json:"-"          gorm:"not null"`
	MessageID int64     `json:"-"          gorm:"not null;index"`
	Title     string    `json:"title"      gorm:"type:varchar(255)"`
	AddedAt   time.Time `json:"added_at"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string { return "videos" }

// Channel is a Telegram channel the user must join before content is
// relayed. Removal is a soft flag flip (Active=false), not deletion, so the
// username stays reserved and historic ordering is preserved.
//
// Fields:
//   - Username: public @handle; unique across the table.
//   - ChatID: numeric chat identifier used for membership checks.
//   - Name: display name shown in prompts; falls back to the handle.
//   - Position: ordinal used to order prompts; assigned as max+1 on insert.
//   - Active: soft-removal flag.
type Channel struct {
	ID       uint      `json:"-"        gorm:"primaryKey"`
	Username string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex:ux_channels_username"`
	ChatID   int64     `json:"chat_id"  gorm:"not null"`
	Name     string    `json:"name"     gorm:"type:varchar(128)"`
	Position int       `json:"position" gorm:"not null"`
	Active   bool      `json:"active"   gorm:"not null;default:true"`
	AddedAt  time.Time `json:"added_at"`
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string { return "channels" }

// Ban records a user barred from the bot. At most one row per user; banning
// again overwrites the reason, unbanning deletes the row.
type Ban struct {
	UserID   int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Reason   string    `json:"reason"  gorm:"type:varchar(255)"`
	BannedAt time.Time `json:"banned_at"`
}

// TableName returns the database table name for Ban.
func (Ban) TableName() string { return "bans" }

// PendingMessages tracks the transient prompt messages the bot last sent to a
// user, so the next relay can sweep them away. One row per user; the list is
// replaced wholesale each time new prompts are sent and the row is deleted
// after a cleanup sweep.
type PendingMessages struct {
	UserID     int64                      `json:"user_id"     gorm:"primaryKey;autoIncrement:false"`
	MessageIDs datatypes.JSONSlice[int64] `json:"message_ids"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// TableName returns the database table name for PendingMessages.
func (PendingMessages) TableName() string { return "pending_messages" }
