package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// Пустой DATABASE_URL включает хранилище в памяти.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	AutoStartMatches  bool          `envconfig:"AUTO_START_MATCHES" default:"true"`
	AutoStartInterval time.Duration `envconfig:"AUTO_START_INTERVAL" default:"1m"`

	R2 R2
}

// R2 описывает необязательный архив итоговых таблиц в Cloudflare R2.
type R2 struct {
	AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `envconfig:"R2_BUCKET_NAME"`
	PublicBaseURL   string `envconfig:"R2_PUBLIC_BASE_URL"`
	ArchivePrefix   string `envconfig:"R2_ARCHIVE_PREFIX" default:"standings"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.AutoStartMatches && c.AutoStartInterval < time.Second {
		return fmt.Errorf("AUTO_START_INTERVAL must be at least 1s, got %s", c.AutoStartInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel переводит LOG_LEVEL в уровень slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
