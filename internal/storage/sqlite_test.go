package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"todohook/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "accounts.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%q) error: %v", driver, err)
		}
		if st != nil {
			t.Fatalf("Open(%q) returned a store", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestAccountRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	in := Account{
		UserID:      "u1",
		AccessToken: "tok-1",
		FullName:    "Dana",
		Timezone:    "Europe/Berlin",
	}
	if err := st.UpsertAccount(ctx, in); err != nil {
		t.Fatalf("UpsertAccount error: %v", err)
	}

	got, err := st.GetAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if got.AccessToken != "tok-1" || got.FullName != "Dana" || got.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestGetAccountNotFound(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	if _, err := st.GetAccount(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAccount error = %v, want ErrNotFound", err)
	}
}

func TestUpsertPreservesTimezone(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.UpsertAccount(ctx, Account{UserID: "u1", AccessToken: "tok-1"}); err != nil {
		t.Fatalf("UpsertAccount error: %v", err)
	}
	if err := st.SetTimezone(ctx, "u1", "Asia/Tokyo"); err != nil {
		t.Fatalf("SetTimezone error: %v", err)
	}

	// A re-auth refreshes the token but must not wipe the preference.
	if err := st.UpsertAccount(ctx, Account{UserID: "u1", AccessToken: "tok-2"}); err != nil {
		t.Fatalf("second UpsertAccount error: %v", err)
	}

	got, err := st.GetAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if got.AccessToken != "tok-2" {
		t.Fatalf("AccessToken = %q, want tok-2", got.AccessToken)
	}
	if got.Timezone != "Asia/Tokyo" {
		t.Fatalf("Timezone = %q, want preserved Asia/Tokyo", got.Timezone)
	}
}

func TestSetTimezoneUnknownAccount(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	if err := st.SetTimezone(context.Background(), "missing", "UTC"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetTimezone error = %v, want ErrNotFound", err)
	}
}

func TestListAccounts(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := st.UpsertAccount(ctx, Account{UserID: id, AccessToken: "tok-" + id}); err != nil {
			t.Fatalf("UpsertAccount(%s) error: %v", id, err)
		}
	}

	got, err := st.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListAccounts = %d accounts, want 3", len(got))
	}
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.UpsertAccount(ctx, Account{UserID: "u1", AccessToken: "tok"}); err != nil {
		t.Fatalf("UpsertAccount error: %v", err)
	}
	if err := st.DeleteAccount(ctx, "u1"); err != nil {
		t.Fatalf("DeleteAccount error: %v", err)
	}
	if _, err := st.GetAccount(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAccount after delete = %v, want ErrNotFound", err)
	}

	// Deleting a missing account is not an error.
	if err := st.DeleteAccount(ctx, "u1"); err != nil {
		t.Fatalf("second DeleteAccount error: %v", err)
	}
}
