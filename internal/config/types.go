package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Todoist  TodoistConfig  `json:"todoist"`
	Engine   EngineConfig   `json:"engine"`
	Sweep    SweepConfig    `json:"sweep,omitempty"`
	Logging  LoggingConfig  `json:"logging"`
}

type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`

	// BaseURL is the externally reachable URL of this service; the OAuth
	// redirect URL is derived from it when todoist.redirect_url is empty.
	BaseURL string `json:"base_url,omitempty"`

	// Go duration strings (e.g. "10s"). Zero means the net/http defaults.
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
}

type DatabaseConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`

	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type TodoistConfig struct {
	// ClientID/ClientSecret may also come from the environment
	// (TODOIST_CLIENT_ID / TODOIST_CLIENT_SECRET); the environment wins.
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`

	// Client-side request budget against the Todoist API.
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
	Burst      int     `json:"burst,omitempty"`

	// Timeout is a Go duration string for a single API call.
	Timeout string `json:"timeout,omitempty"`
}

type EngineConfig struct {
	// DefaultTimezone is the IANA zone used when an account has no stored
	// preference.
	DefaultTimezone string `json:"default_timezone,omitempty"`

	// QueueSize bounds the webhook event fanout buffer.
	QueueSize int `json:"queue_size,omitempty"`
}

type SweepConfig struct {
	Enabled bool `json:"enabled,omitempty"`

	// Schedule is a cron spec (five fields or @every syntax).
	Schedule string `json:"schedule,omitempty"`

	// Timezone the cron schedule is evaluated in; empty means local time.
	Timezone string `json:"timezone,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console,omitempty"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Validate checks cross-field constraints that the strict decoder cannot.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	for _, f := range []struct{ path, raw string }{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"database.busy_timeout", c.Database.BusyTimeout},
		{"todoist.timeout", c.Todoist.Timeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	if c.Todoist.RatePerSec < 0 {
		return errors.New("todoist.rate_per_sec must be >= 0")
	}
	if tz := strings.TrimSpace(c.Engine.DefaultTimezone); tz != "" {
		if !validZone(tz) {
			return fmt.Errorf("engine.default_timezone: unknown zone %q", tz)
		}
	}
	if c.Sweep.Enabled && strings.TrimSpace(c.Sweep.Schedule) == "" {
		return errors.New("sweep.schedule is required when sweep is enabled")
	}
	return nil
}

func validZone(name string) bool {
	_, err := time.LoadLocation(name)
	return err == nil
}
