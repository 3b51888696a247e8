package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type BotConfig struct {
	Token         string  `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	AdminIDs      []int64 `yaml:"admin_ids" env:"ADMIN_IDS" envSeparator:","`
	Workers       int     `yaml:"workers" env:"BOT_WORKERS"`
	WebAppURL     string  `yaml:"webapp_url" env:"WEBAPP_URL"`
	AdminPanelURL string  `yaml:"admin_panel_url" env:"ADMIN_PANEL_URL"`
	LogoPath      string  `yaml:"logo_path" env:"LOGO_PATH"`
	SupportURL    string  `yaml:"support_url" env:"SUPPORT_URL"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling" env:"LOG_SAMPLING"`
}

type HTTPConfig struct {
	Port         int    `yaml:"port" env:"PORT"`
	PublicDomain string `yaml:"public_domain" env:"PUBLIC_DOMAIN"`
	UploadDir    string `yaml:"upload_dir" env:"UPLOAD_DIR"`
	// AdminSecret signs admin session tokens for the panel API.
	AdminSecret string `yaml:"admin_secret" env:"ADMIN_API_SECRET"`
}

type StorageConfig struct {
	Driver  string `yaml:"driver" env:"STORAGE_DRIVER"` // file|postgres
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
	// DatabaseURL is only consulted for the postgres driver.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type RedisConfig struct {
	// URL empty means Redis-backed features (rate limiting, shared
	// referral staging) fall back to in-process implementations.
	URL      string `yaml:"url" env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type BroadcastConfig struct {
	// SendDelay is the fixed pacing interval between recipient sends,
	// keeping the bot under Telegram's ~30 msg/s outbound ceiling.
	SendDelay   time.Duration `yaml:"send_delay" env:"BROADCAST_SEND_DELAY"`
	ReferralTTL time.Duration `yaml:"referral_ttl" env:"REFERRAL_TTL"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// Load builds the configuration from an optional YAML file overlaid by
// the environment (optionally seeded from a .env file). Environment
// variables always win; defaults fill whatever remains unset.
func Load(yamlPath string) (*Config, error) {
	// Missing .env is fine; production sets real env vars.
	_ = godotenv.Load()

	var cfg Config
	if yamlPath != "" {
		b, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot token is required (TELEGRAM_BOT_TOKEN)")
	}
	if c.Storage.Driver != "file" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DatabaseURL == "" {
		return errors.New("storage driver postgres requires DATABASE_URL")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 8
	}
	if c.Bot.WebAppURL == "" {
		c.Bot.WebAppURL = "https://hagere-online.com"
	}
	if c.Bot.AdminPanelURL == "" {
		c.Bot.AdminPanelURL = "https://hagere-online.com/admin"
	}
	if c.Bot.LogoPath == "" {
		c.Bot.LogoPath = "assets/logo.png"
	}
	if c.Bot.SupportURL == "" {
		c.Bot.SupportURL = "https://t.me/HagereGamesOnline"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3001
	}
	if c.HTTP.PublicDomain == "" {
		c.HTTP.PublicDomain = fmt.Sprintf("http://localhost:%d", c.HTTP.Port)
	}
	if c.HTTP.UploadDir == "" {
		c.HTTP.UploadDir = "uploads"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Broadcast.SendDelay <= 0 {
		c.Broadcast.SendDelay = 50 * time.Millisecond
	}
	if c.Broadcast.ReferralTTL <= 0 {
		c.Broadcast.ReferralTTL = time.Hour
	}
}

// IsAdminConfigured reports whether any admin IDs are present; with none,
// every privileged operation is refused.
func (c *Config) IsAdminConfigured() bool { return len(c.Bot.AdminIDs) > 0 }
