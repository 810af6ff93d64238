package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	defaultListenAddr     = ":8080"
	defaultDBPath         = "easel.db"
	defaultDeadlineWindow = 48 * time.Hour

	envListenAddr     = "EASEL_LISTEN_ADDR"
	envDBPath         = "EASEL_DB_PATH"
	envLogLevel       = "EASEL_LOG_LEVEL"
	envDeadlineWindow = "EASEL_DEADLINE_WINDOW"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	LogLevel       slog.Level
	DeadlineWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:     defaultListenAddr,
		DBPath:         defaultDBPath,
		LogLevel:       slog.LevelInfo,
		DeadlineWindow: defaultDeadlineWindow,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envDeadlineWindow); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DeadlineWindow = d
		}
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
