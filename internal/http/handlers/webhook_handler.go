// Package handlers – Telegram webhook intake
//
// The webhook endpoint decodes an update and acknowledges immediately;
// processing happens on a detached goroutine. Telegram retries deliveries
// that do not return 200 quickly, and the gating workflow deliberately
// sleeps (video load delay, sweep pacing), so handling inline would turn
// every relay into a duplicate storm.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cineflix/videogate-bot/internal/http/middleware"
	"github.com/cineflix/videogate-bot/internal/telegram"
)

// updateTimeout bounds background processing of one update. Generous because
// a relay includes cosmetic delays and a paced cleanup sweep.
const updateTimeout = 90 * time.Second

// Webhook handles POST deliveries from the Telegram Bot API.
func (h *Handler) Webhook(c *gin.Context) {
	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed update")
		return
	}

	middleware.CountUpdate(updateKind(upd))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		h.Dispatcher.HandleUpdate(ctx, upd)
	}()

	c.Status(http.StatusOK)
}

func updateKind(upd telegram.Update) string {
	switch {
	case upd.Message != nil:
		return "message"
	case upd.CallbackQuery != nil:
		return "callback_query"
	case upd.ChannelPost != nil:
		return "channel_post"
	default:
		return "other"
	}
}
