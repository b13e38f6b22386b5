// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards the Telegram webhook endpoint. Telegram echoes the secret
// token registered via setWebhook in the X-Telegram-Bot-Api-Secret-Token
// header on every delivery; anything without a matching header is rejected
// before the body is even decoded.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// secretTokenHeader is the header Telegram sends the registered secret in.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuth returns a middleware that rejects webhook deliveries whose
// secret token does not match. An empty configured secret disables the check
// (polling-style local setups).
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "invalid webhook secret",
			})
			return
		}
		c.Next()
	}
}
