package config

import (
	"testing"
	"time"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("ADMIN_ID", "1000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" || cfg.GinMode != "release" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.VideoLoadDelay != 4*time.Second || cfg.AntiSpamCooldown != 5*time.Second {
		t.Fatalf("unexpected gating defaults: %+v", cfg)
	}
	if cfg.MaxCleanupMessages != 50 || !cfg.EnableAntiSpam || !cfg.EnableAutoCleanup || !cfg.ProtectContent {
		t.Fatalf("unexpected feature defaults: %+v", cfg)
	}
	if cfg.CodePrefix != "VID" {
		t.Fatalf("unexpected code prefix: %q", cfg.CodePrefix)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "1000")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing BOT_TOKEN")
	}
}

func TestLoad_MissingAdmin(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("ADMIN_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing ADMIN_ID")
	}
}

func TestLoad_NormalizesValues(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("CODE_PREFIX", "clip")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("warning alias not normalized: %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("bogus gin mode not coerced: %q", cfg.GinMode)
	}
	if cfg.CodePrefix != "CLIP" {
		t.Fatalf("prefix not uppercased: %q", cfg.CodePrefix)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"LOG_LEVEL", "verbose"},
		{"ANTI_SPAM_COOLDOWN", "-5s"},
		{"MAX_CLEANUP_MESSAGES", "0"},
		{"OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected rejection of %s=%s", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_ParsesDurationsAndCSV(t *testing.T) {
	setRequired(t)
	t.Setenv("VIDEO_LOAD_DELAY", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VideoLoadDelay != 250*time.Millisecond {
		t.Fatalf("duration not parsed: %v", cfg.VideoLoadDelay)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("csv not parsed: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLoad()
}
