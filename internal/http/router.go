// Package httpapi wires the HTTP transport (Gin) to the bot dispatcher and
// mini-app handlers. It centralizes cross-cutting concerns: tracing,
// correlation IDs, structured logging, panic recovery, metrics, CORS, and
// webhook authentication.
//
// Middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: panics to JSON 500 after the logger
//  5. Body size limiter
//  6. Metrics
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/cineflix/videogate-bot/internal/config"
	"github.com/cineflix/videogate-bot/internal/http/handlers"
	"github.com/cineflix/videogate-bot/internal/http/middleware"
)

// RegisterRoutes attaches all middleware and endpoints to the given engine.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Telegram updates are small; 1 MiB leaves ample headroom.
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Webhook intake, guarded by the registered secret token.
	webhook := r.Group("/telegram")
	webhook.Use(middleware.WebhookAuth(cfg.WebhookSecret))
	webhook.POST("/webhook", h.Webhook)

	// Mini-app API: browser-facing, so CORS and compression apply here only.
	api := r.Group("/api/v1")
	api.Use(corsFor(cfg.CORS.AllowedOrigins))
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET("/videos", h.ListVideos)
		api.GET("/stats", h.Stats)
	}
}

// corsFor builds the CORS policy: allow-all when no origins are configured,
// an explicit allowlist otherwise.
func corsFor(origins []string) gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
	} else {
		base.AllowOrigins = origins
	}
	return cors.New(base)
}

// limitBody caps the request body size using http.MaxBytesReader. Oversized
// requests fail on downstream body reads.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
