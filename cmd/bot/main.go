// Command bot runs the membership-gating Telegram bot: webhook intake, the
// gating workflow, the admin command set, and the mini-app API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cineflix/videogate-bot/internal/bot"
	"github.com/cineflix/videogate-bot/internal/config"
	httpapi "github.com/cineflix/videogate-bot/internal/http"
	"github.com/cineflix/videogate-bot/internal/http/handlers"
	"github.com/cineflix/videogate-bot/internal/observability"
	"github.com/cineflix/videogate-bot/internal/repo"
	"github.com/cineflix/videogate-bot/internal/services"
	"github.com/cineflix/videogate-bot/internal/sysutil"
	"github.com/cineflix/videogate-bot/internal/telegram"
)

// version is stamped at build time via -ldflags.
var version = ""

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	gin.SetMode(cfg.GinMode)

	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")
	log.Info().Str("version", ver).Msg("starting videogate bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(cfg.DBPath, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrating database")
	}
	if dc := cfg.DefaultChannel; dc.Username != "" && dc.ChatID != 0 {
		if err := repo.SeedDefaultChannel(ctx, db, dc.Username, dc.ChatID, dc.Name); err != nil {
			log.Error().Err(err).Str("username", dc.Username).Msg("seeding default channel")
		}
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("configuring tracing")
	}

	tg := telegram.NewClient(cfg.BotToken)
	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram handshake failed")
	}
	log.Info().Str("bot", me.Username).Msg("telegram connected")

	members := services.NewMembershipService(db, tg)
	gate := services.NewGateService(db, tg, members, services.GateOptions{
		MiniAppURL:     cfg.MiniAppURL,
		VideoLoadDelay: cfg.VideoLoadDelay,
		Cooldown:       cfg.AntiSpamCooldown,
		MaxCleanup:     cfg.MaxCleanupMessages,
		AntiSpam:       cfg.EnableAntiSpam,
		AutoCleanup:    cfg.EnableAutoCleanup,
		ProtectContent: cfg.ProtectContent,
	})
	admin := services.NewAdminService(db, tg, cfg.AdminID)
	publish := services.NewPublishService(db, tg, cfg.AdminID, me.Username, cfg.CodePrefix)
	dispatcher := bot.NewDispatcher(tg, gate, admin, publish, me.Username)

	h := handlers.New(db, dispatcher, admin, me.Username)
	router := gin.New()
	httpapi.RegisterRoutes(router, h, cfg)

	if cfg.WebhookHost != "" {
		url := cfg.WebhookHost + "/telegram/webhook"
		if err := tg.SetWebhook(ctx, url, cfg.WebhookSecret); err != nil {
			log.Fatal().Err(err).Str("url", url).Msg("registering webhook")
		}
		log.Info().Str("url", url).Msg("webhook registered")
	} else {
		log.Warn().Msg("WEBHOOK_HOST not set, skipping webhook registration")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("stopped")
}
