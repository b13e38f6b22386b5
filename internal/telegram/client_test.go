package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient spins up a fake Bot API server and a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("123:TESTTOKEN", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), srv
}

func TestSendMessage_Success(t *testing.T) {
	var gotPath string
	var gotBody SendMessageParams

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42, "chat": map[string]any{"id": 7}},
		})
	})

	msg, err := c.SendMessage(context.Background(), SendMessageParams{ChatID: 7, Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != 42 || msg.Chat.ID != 7 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if gotPath != "/bot123:TESTTOKEN/sendMessage" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotBody.ChatID != 7 || gotBody.Text != "hi" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestCall_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  403,
			"description": "Forbidden: bot was blocked by the user",
		})
	})

	_, err := c.SendMessage(context.Background(), SendMessageParams{ChatID: 1, Text: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 403 || !strings.Contains(apiErr.Description, "blocked") {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGetChatMember(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p map[string]int64
		_ = json.NewDecoder(r.Body).Decode(&p)
		if p["chat_id"] != -100 || p["user_id"] != 9 {
			t.Fatalf("unexpected params: %v", p)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"status": "member", "user": map[string]any{"id": 9}},
		})
	})

	m, err := c.GetChatMember(context.Background(), -100, 9)
	if err != nil {
		t.Fatalf("GetChatMember: %v", err)
	}
	if m.Status != "member" || m.User.ID != 9 {
		t.Fatalf("unexpected member: %+v", m)
	}
}

func TestCopyMessage_ProtectContentOnWire(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		_ = json.NewDecoder(r.Body).Decode(&p)
		if p["protect_content"] != true {
			t.Fatalf("protect_content missing from payload: %v", p)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 77},
		})
	})

	id, err := c.CopyMessage(context.Background(), CopyMessageParams{
		ChatID: 1, FromChatID: -2, MessageID: 3, ProtectContent: true,
	})
	if err != nil {
		t.Fatalf("CopyMessage: %v", err)
	}
	if id.ID != 77 {
		t.Fatalf("unexpected id: %+v", id)
	}
}

func TestTransportError_ScrubsToken(t *testing.T) {
	// Point at a closed server so the transport fails with the URL embedded.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient("123:SECRETTOKEN", WithBaseURL(url))
	_, err := c.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "SECRETTOKEN") {
		t.Fatalf("token leaked into error: %v", err)
	}
}

func TestSetWebhook_SecretOptional(t *testing.T) {
	var got map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": true})
	})

	if err := c.SetWebhook(context.Background(), "https://example.com/hook", "s3cret"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
	if got["url"] != "https://example.com/hook" || got["secret_token"] != "s3cret" {
		t.Fatalf("unexpected payload: %v", got)
	}

	if err := c.SetWebhook(context.Background(), "https://example.com/hook", ""); err != nil {
		t.Fatalf("SetWebhook without secret: %v", err)
	}
	if _, ok := got["secret_token"]; ok {
		t.Fatalf("empty secret must be omitted: %v", got)
	}
}
