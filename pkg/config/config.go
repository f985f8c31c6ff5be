package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"foodhub/pkg/logger"
)

type Config struct {
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"https://api.marcelpeterson.me"`
	ChatHubURL  string        `envconfig:"CHAT_HUB_URL" default:"wss://api.marcelpeterson.me/ws/chat"`
	DataDir     string        `envconfig:"DATA_DIR"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"console"`

	ReconnectMaxAttempts int           `envconfig:"RECONNECT_MAX_ATTEMPTS" default:"5"`
	ReconnectBaseDelay   time.Duration `envconfig:"RECONNECT_BASE_DELAY" default:"1s"`
	ReconnectMaxDelay    time.Duration `envconfig:"RECONNECT_MAX_DELAY" default:"30s"`
}

func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FOODHUB", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".foodhub")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	return &cfg, nil
}
