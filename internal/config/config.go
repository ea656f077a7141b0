// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// Defaults for optional settings.
const (
	DefaultBroadcastDelay = 50 * time.Millisecond
	DefaultRefitInterval  = 6 * time.Hour
)

// DefaultAlertThreshold is the transaction amount above which admins are notified.
var DefaultAlertThreshold = decimal.NewFromInt(1000)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	LogLevel         string

	// AdminChatIDs are granted the admin role on first contact and may use
	// /broadcast, /clearcache and /users.
	AdminChatIDs []int64

	// GroupChatID, when non-zero, receives a notification for every
	// recorded transaction.
	GroupChatID int64

	// AlertThreshold is the amount above which admins get an alert.
	AlertThreshold decimal.Decimal

	// BroadcastDelay is the pause between consecutive broadcast deliveries.
	BroadcastDelay time.Duration

	// RefitInterval is how often the trend model is refitted.
	RefitInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		AlertThreshold:   DefaultAlertThreshold,
		BroadcastDelay:   DefaultBroadcastDelay,
		RefitInterval:    DefaultRefitInterval,
	}

	adminStr := os.Getenv("ADMIN_CHAT_IDS")
	if adminStr != "" {
		for _, idStr := range strings.Split(adminStr, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				continue
			}
			cfg.AdminChatIDs = append(cfg.AdminChatIDs, id)
		}
	}

	if groupStr := os.Getenv("GROUP_CHAT_ID"); groupStr != "" {
		if id, err := strconv.ParseInt(groupStr, 10, 64); err == nil {
			cfg.GroupChatID = id
		}
	}

	if thresholdStr := os.Getenv("ALERT_THRESHOLD"); thresholdStr != "" {
		if d, err := decimal.NewFromString(thresholdStr); err == nil && d.IsPositive() {
			cfg.AlertThreshold = d
		}
	}

	if delayStr := os.Getenv("BROADCAST_DELAY_MS"); delayStr != "" {
		if ms, err := strconv.Atoi(delayStr); err == nil && ms >= 0 {
			cfg.BroadcastDelay = time.Duration(ms) * time.Millisecond
		}
	}

	if refitStr := os.Getenv("FORECAST_REFIT_HOURS"); refitStr != "" {
		if h, err := strconv.Atoi(refitStr); err == nil && h > 0 {
			cfg.RefitInterval = time.Duration(h) * time.Hour
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsAdmin checks if a chat ID belongs to a configured admin.
func (c *Config) IsAdmin(chatID int64) bool {
	return slices.Contains(c.AdminChatIDs, chatID)
}

// RoleFor returns the role a chat gets on first contact.
func (c *Config) RoleFor(chatID int64) string {
	if c.IsAdmin(chatID) {
		return models.RoleAdmin
	}
	return models.RoleUser
}
