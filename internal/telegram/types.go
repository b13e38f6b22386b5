package telegram

// Update is a single inbound event delivered by the Bot API. Exactly one of
// the optional payload fields is set.
type Update struct {
	ID            int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
	ChannelPost   *Message       `json:"channel_post,omitempty"`
}

// User is a Telegram account (person or bot).
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat is a conversation the bot participates in: a private chat, group, or
// channel.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// Message is a message in a chat. Only the fields the bot inspects are
// mapped; everything else is ignored on decode.
type Message struct {
	ID        int64      `json:"message_id"`
	From      *User      `json:"from,omitempty"`
	Chat      Chat       `json:"chat"`
	Text      string     `json:"text,omitempty"`
	Caption   string     `json:"caption,omitempty"`
	Video     *FileMeta  `json:"video,omitempty"`
	Document  *FileMeta  `json:"document,omitempty"`
	Animation *FileMeta  `json:"animation,omitempty"`
}

// FileMeta carries the attachment metadata the bot cares about.
type FileMeta struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Data    string   `json:"data,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// ChatMember describes a user's standing in a chat. Status is one of
// "creator", "administrator", "member", "restricted", "left", "kicked".
type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

// MessageID is the reduced result returned by copyMessage.
type MessageID struct {
	ID int64 `json:"message_id"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is a single inline button. Exactly one of URL,
// CallbackData, or WebApp should be set.
type InlineKeyboardButton struct {
	Text         string      `json:"text"`
	URL          string      `json:"url,omitempty"`
	CallbackData string      `json:"callback_data,omitempty"`
	WebApp       *WebAppInfo `json:"web_app,omitempty"`
}

// WebAppInfo points an inline button at a Telegram web app.
type WebAppInfo struct {
	URL string `json:"url"`
}

// SendMessageParams are the arguments for the sendMessage method.
type SendMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageTextParams are the arguments for the editMessageText method.
type EditMessageTextParams struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// CopyMessageParams are the arguments for the copyMessage method, which
// relays a message between chats without a forward header.
type CopyMessageParams struct {
	ChatID         int64 `json:"chat_id"`
	FromChatID     int64 `json:"from_chat_id"`
	MessageID      int64 `json:"message_id"`
	ProtectContent bool  `json:"protect_content,omitempty"`
}
