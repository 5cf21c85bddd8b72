package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "todohook/pkg/logx"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) UpsertAccount(ctx context.Context, a Account) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(user_id, access_token, full_name, timezone, created_at, updated_at)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   access_token = excluded.access_token,
		   full_name    = excluded.full_name,
		   updated_at   = excluded.updated_at`,
		a.UserID, a.AccessToken, a.FullName, nullStr(a.Timezone), now, now,
	)
	return err
}

func (s *sqliteStore) GetAccount(ctx context.Context, userID string) (Account, error) {
	if s == nil || s.db == nil {
		return Account{}, ErrDisabled
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, access_token, full_name, timezone, created_at, updated_at
		 FROM accounts WHERE user_id = ?`, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (s *sqliteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, access_token, full_name, timezone, created_at, updated_at
		 FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SetTimezone(ctx context.Context, userID, tz string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET timezone = ?, updated_at = ? WHERE user_id = ?`,
		nullStr(tz), now, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) DeleteAccount(ctx context.Context, userID string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ?`, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (Account, error) {
	var (
		a       Account
		tz      sql.NullString
		created string
		updated string
	)
	if err := r.Scan(&a.UserID, &a.AccessToken, &a.FullName, &tz, &created, &updated); err != nil {
		return Account{}, err
	}
	if tz.Valid {
		a.Timezone = tz.String
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		a.UpdatedAt = t
	}
	return a, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
