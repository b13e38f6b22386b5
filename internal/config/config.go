// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as the bot token, admin identity, server timeouts, logging, database
// path, gating behavior, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings for the mini-app
// API.
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "videogate-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DefaultChannelConfig seeds a single required channel on first start so a
// fresh deployment gates on something before the admin configures more.
type DefaultChannelConfig struct {
	Username string // DEFAULT_CHANNEL_USERNAME (e.g. "@cineflix")
	ChatID   int64  // DEFAULT_CHANNEL_CHAT_ID
	Name     string // DEFAULT_CHANNEL_NAME
}

// Config holds all configuration values for the application.
type Config struct {
	// Telegram
	BotToken      string // BOT_TOKEN (required)
	AdminID       int64  // ADMIN_ID (required)
	WebhookHost   string // WEBHOOK_HOST; webhook registration skipped when empty
	WebhookSecret string // WEBHOOK_SECRET; echoed back by Telegram per request

	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath     string // SQLite path
	MiniAppURL string // web-app button target
	CodePrefix string // short-code prefix, e.g. "VID"

	// Gating behavior
	VideoLoadDelay     time.Duration // cosmetic pacing before a relay
	AntiSpamCooldown   time.Duration // per-user gap between fresh deep-link entries
	MaxCleanupMessages int           // cap on swept prompts per relay
	EnableAntiSpam     bool
	EnableAutoCleanup  bool
	ProtectContent     bool // relay with protect_content

	// Seeding
	DefaultChannel DefaultChannelConfig

	// Web protection
	CORS CORSConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Telegram
		BotToken:      getenv("BOT_TOKEN", ""),
		AdminID:       getint64("ADMIN_ID", 0),
		WebhookHost:   getenv("WEBHOOK_HOST", ""),
		WebhookSecret: getenv("WEBHOOK_SECRET", ""),

		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:     getenv("DB_PATH", "bot.db"),
		MiniAppURL: getenv("MINI_APP_URL", ""),
		CodePrefix: strings.ToUpper(getenv("CODE_PREFIX", "VID")),

		// Gating behavior
		VideoLoadDelay:     getdur("VIDEO_LOAD_DELAY", 4*time.Second),
		AntiSpamCooldown:   getdur("ANTI_SPAM_COOLDOWN", 5*time.Second),
		MaxCleanupMessages: getint("MAX_CLEANUP_MESSAGES", 50),
		EnableAntiSpam:     getbool("ENABLE_ANTI_SPAM", true),
		EnableAutoCleanup:  getbool("ENABLE_AUTO_CLEANUP", true),
		ProtectContent:     getbool("ENABLE_DOWNLOAD_PROTECTION", true),

		// Seeding
		DefaultChannel: DefaultChannelConfig{
			Username: getenv("DEFAULT_CHANNEL_USERNAME", ""),
			ChatID:   getint64("DEFAULT_CHANNEL_CHAT_ID", 0),
			Name:     getenv("DEFAULT_CHANNEL_NAME", ""),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "videogate-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("BOT_TOKEN must not be empty")
	}
	if cfg.AdminID == 0 {
		return cfg, errors.New("ADMIN_ID must be set")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.CodePrefix) == "" {
		return cfg, errors.New("CODE_PREFIX must not be empty")
	}
	if cfg.VideoLoadDelay < 0 {
		return cfg, errors.New("VIDEO_LOAD_DELAY must be >= 0")
	}
	if cfg.AntiSpamCooldown <= 0 {
		return cfg, errors.New("ANTI_SPAM_COOLDOWN must be > 0")
	}
	if cfg.MaxCleanupMessages < 1 {
		return cfg, errors.New("MAX_CLEANUP_MESSAGES must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
