// Package telegram implements a minimal Telegram Bot API client covering the
// methods the gating bot needs: message send/edit/delete, cross-chat copy,
// chat-member lookup, bot identity, callback answers, and webhook
// registration. Calls are plain JSON-over-HTTPS request/response exchanges
// against api.telegram.org; transport and retry policy stay with the
// platform defaults.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-OK response from the Bot API.
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s (code %d)", e.Description, e.Code)
}

// Client talks to the Telegram Bot API on behalf of a single bot token.
// The zero value is not usable; construct with NewClient.
type Client struct {
	token    string
	baseURL  string
	httpc    *http.Client
	scrubber *strings.Replacer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithBaseURL points the client at a different API host. Used by tests to
// target an httptest server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// NewClient returns a Client for the given bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{},
		// Keep the token out of error strings and logs.
		scrubber: strings.NewReplacer(token, "[REDACTED]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the uniform Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call POSTs payload as JSON to the given API method and decodes the result
// into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encoding %s payload: %w", method, err)
	}

	url := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: building %s request: %w", method, c.scrub(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, c.scrub(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: reading %s response: %w", method, err)
	}

	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("telegram: decoding %s response: %w", method, err)
	}
	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("telegram: decoding %s result: %w", method, err)
		}
	}
	return nil
}

// scrub removes the bot token from transport errors, which embed the URL.
func (c *Client) scrub(err error) error {
	return fmt.Errorf("%s", c.scrubber.Replace(err.Error()))
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SendMessage sends a text message and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (*Message, error) {
	var m Message
	if err := c.call(ctx, "sendMessage", p, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// EditMessageText replaces the text (and keyboard) of a previously sent
// message.
func (c *Client) EditMessageText(ctx context.Context, p EditMessageTextParams) (*Message, error) {
	var m Message
	if err := c.call(ctx, "editMessageText", p, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage removes a message from a chat.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]int64{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// CopyMessage relays a message from one chat into another without a forward
// header and returns the new message identifier.
func (c *Client) CopyMessage(ctx context.Context, p CopyMessageParams) (*MessageID, error) {
	var id MessageID
	if err := c.call(ctx, "copyMessage", p, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// GetChatMember returns the user's standing in the given chat.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	var m ChatMember
	err := c.call(ctx, "getChatMember", map[string]int64{
		"chat_id": chatID,
		"user_id": userID,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]string{
		"callback_query_id": callbackID,
	}, nil)
}

// SetWebhook registers the bot's webhook URL with an optional secret token
// that Telegram echoes back in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	payload := map[string]string{"url": url}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", payload, nil)
}
