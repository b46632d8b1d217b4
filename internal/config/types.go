// Package config loads and watches fairybot's configuration file.
//
// Both JSON and YAML files are accepted; YAML is coerced to JSON so one
// strict decoder (DisallowUnknownFields) covers both formats.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Menu     MenuConfig     `json:"menu,omitempty"`
	Record   RecordConfig   `json:"record,omitempty"`
	Schedule ScheduleConfig `json:"schedule,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// TelegramConfig carries the bot credentials. These are read once at
// startup and stay fixed for the process lifetime; changing them requires
// a restart.
type TelegramConfig struct {
	Token string `json:"token"`
	// ChannelID is a numeric chat id or an @channel username.
	ChannelID string `json:"channel_id"`

	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// MenuConfig points at the shop's menu API. Defaults target the production
// endpoint; tests override BaseURL.
type MenuConfig struct {
	BaseURL  string `json:"base_url,omitempty"`
	PublicID string `json:"public_id,omitempty"`
	// Timeout is a Go duration string (e.g. "10s", "1m").
	Timeout string `json:"timeout,omitempty"`
}

// RecordConfig controls where the last-sent date is persisted.
//
// Driver values: "file" (default) or "sqlite" (requires the sqlite build tag).
type RecordConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
}

type ScheduleConfig struct {
	// Timezone is an IANA name (e.g. "Asia/Taipei") for the send window
	// and date arithmetic. Empty means the system local zone.
	Timezone string `json:"timezone,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Validate rejects configs the bot cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Telegram.ChannelID) == "" {
		return errors.New("telegram.channel_id is required")
	}
	if _, err := ParseDurationField("menu.timeout", c.Menu.Timeout); err != nil {
		return err
	}
	if tz := strings.TrimSpace(c.Schedule.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("schedule.timezone: %w", err)
		}
	}
	return nil
}
