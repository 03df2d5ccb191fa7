// Package config loads the bot configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the bot needs to start.
type Config struct {
	// Telegram
	BotToken string

	// Database
	DBPath string

	// Ops HTTP server (/metrics, /healthz)
	HTTPAddr string

	// Bot behavior
	HistoryLimit int

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() *Config {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	return &Config{
		BotToken:     getEnv("BOT_TOKEN", ""),
		DBPath:       getEnv("DB_PATH", "./data/behalf.db"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 10),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.BotToken == "" {
		problems = append(problems, "BOT_TOKEN is required")
	}

	// The storage layer creates missing directories itself; validation only
	// rejects a path that cannot possibly work.
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			problems = append(problems, fmt.Sprintf("database directory %q is not a directory", dir))
		}
	}

	if c.HistoryLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid history limit %d: must be at least 1", c.HistoryLimit))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
