package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string

	BotPrefix  string
	EgressMode string // http | ws | auto

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL    string
	DatabaseURL string

	AllowedRooms []string
	MessagesDir  string

	CheckersDefaultPreset string
	CheckersSessionTTLSec int
	CheckersHistoryLimit  int
	CheckersBoardFile     string
}

// SessionTTL is CheckersSessionTTLSec as a duration.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.CheckersSessionTTLSec) * time.Second
}

// BridgeHeaders returns the identity headers sent to the chat bridge.
func (c *AppConfig) BridgeHeaders() map[string]string {
	h := map[string]string{}
	if c.XUserID != "" {
		h["X-User-Id"] = c.XUserID
	}
	if c.XUserEmail != "" {
		h["X-User-Email"] = c.XUserEmail
	}
	if c.XSessionID != "" {
		h["X-Session-Id"] = c.XSessionID
	}
	return h
}

func defaults() *AppConfig {
	return &AppConfig{
		EgressMode:            "http",
		CheckersDefaultPreset: "hard",
		CheckersSessionTTLSec: 3600,
		CheckersHistoryLimit:  10,
	}
}

// Load reads the chat bot configuration. The Iris endpoints and the command
// prefix are required.
func Load() (*AppConfig, error) {
	cfg := defaults()

	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.IrisWSURL = strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	cfg.BotPrefix = strings.TrimSpace(os.Getenv("BOT_PREFIX"))
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("EGRESS_MODE"))); v != "" {
		cfg.EgressMode = v
	}

	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	loadShared(cfg)

	cfg.AllowedRooms = splitList(os.Getenv("ALLOWED_ROOMS"))
	if len(cfg.AllowedRooms) == 0 {
		cfg.AllowedRooms = splitList(os.Getenv("CHECKERS_ALLOWED_ROOMS"))
	}

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	return cfg, nil
}

// LoadLocal reads only what the terminal game needs; nothing is required.
func LoadLocal() *AppConfig {
	cfg := defaults()
	loadShared(cfg)
	return cfg
}

func loadShared(cfg *AppConfig) {
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.CheckersBoardFile = strings.TrimSpace(os.Getenv("CHECKERS_BOARD_FILE"))

	if v := strings.TrimSpace(os.Getenv("CHECKERS_DEFAULT_PRESET")); v != "" {
		cfg.CheckersDefaultPreset = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckersSessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckersHistoryLimit = n
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
