package storage

import (
	"errors"
	"time"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrNotFound = errors.New("account not found")
)

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Account is one connected Todoist user.
//
// Timezone is the user's stored preference; empty means "not set" and the
// resolver falls back to the configured default zone.
type Account struct {
	UserID      string
	AccessToken string
	FullName    string
	Timezone    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
