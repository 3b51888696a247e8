//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("env only with defaults", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("ADMIN_IDS", "111,222")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Bot.Token != "123:abc" {
			t.Fatalf("Token = %q", cfg.Bot.Token)
		}
		if len(cfg.Bot.AdminIDs) != 2 || cfg.Bot.AdminIDs[0] != 111 || cfg.Bot.AdminIDs[1] != 222 {
			t.Fatalf("AdminIDs = %v", cfg.Bot.AdminIDs)
		}
		if !cfg.IsAdminConfigured() {
			t.Fatal("IsAdminConfigured() = false")
		}
		if cfg.HTTP.Port != 3001 || cfg.Storage.Driver != "file" {
			t.Fatalf("defaults not applied: %+v", cfg)
		}
		if cfg.Broadcast.SendDelay != 50*time.Millisecond || cfg.Broadcast.ReferralTTL != time.Hour {
			t.Fatalf("broadcast defaults: %+v", cfg.Broadcast)
		}
	})

	t.Run("yaml overlay with env winning", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("PORT", "9000")
		t.Setenv("BROADCAST_SEND_DELAY", "100ms")

		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := `
http:
  port: 8080
  upload_dir: /srv/uploads
`
		if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
			t.Fatalf("write yaml: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTP.Port != 9000 {
			t.Fatalf("env PORT should win, got %d", cfg.HTTP.Port)
		}
		if cfg.HTTP.UploadDir != "/srv/uploads" {
			t.Fatalf("UploadDir = %q", cfg.HTTP.UploadDir)
		}
		if cfg.Broadcast.SendDelay != 100*time.Millisecond {
			t.Fatalf("SendDelay = %v", cfg.Broadcast.SendDelay)
		}
	})

	t.Run("missing token fails", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		if _, err := Load(""); err == nil {
			t.Fatal("expected an error for missing token")
		}
	})

	t.Run("postgres driver requires database url", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")
		if _, err := Load(""); err == nil {
			t.Fatal("expected an error for missing DATABASE_URL")
		}
	})
}
