package storage

import (
	"context"
	"errors"
	"strings"

	logx "todohook/pkg/logx"
)

// Store is the account persistence API used by the web layer and the sweep.
type Store interface {
	UpsertAccount(ctx context.Context, a Account) error
	GetAccount(ctx context.Context, userID string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	SetTimezone(ctx context.Context, userID, tz string) error
	DeleteAccount(ctx context.Context, userID string) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
