package account

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"regatta/internal/adapters/storage"
	domain "regatta/internal/domain/account"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	acct := domain.Account{
		ID:        "acc-1",
		Email:     "office@regattaseries.example",
		Role:      domain.RoleAdmin,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := acct.SetPassword("Paddles up twice"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := store.Save(ctx, acct); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != acct.Email || got.Role != domain.RoleAdmin {
		t.Errorf("account did not round-trip: %+v", got)
	}
	if err := got.CheckPassword("Paddles up twice"); err != nil {
		t.Errorf("expected stored hash to verify: %v", err)
	}
	if !got.LockedUntil.IsZero() {
		t.Errorf("expected no lockout, got %v", got.LockedUntil)
	}

	byEmail, err := store.GetByEmail(ctx, "office@regattaseries.example")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "acc-1" {
		t.Errorf("expected acc-1, got %s", byEmail.ID)
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); err == nil {
		t.Fatal("expected an error for an unknown ID")
	}
	if _, err := store.GetByEmail(ctx, "nobody@example.org"); err == nil {
		t.Fatal("expected an error for an unknown email")
	}
}

func TestSQLiteStore_LockoutRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	lockedUntil := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	acct := domain.Account{
		ID:           "acc-1",
		Email:        "office@regattaseries.example",
		Role:         domain.RoleAdmin,
		FailedLogins: 5,
		LockedUntil:  lockedUntil,
	}
	if err := store.Save(ctx, acct); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FailedLogins != 5 {
		t.Errorf("expected 5 failed logins, got %d", got.FailedLogins)
	}
	if !got.LockedUntil.Equal(lockedUntil) {
		t.Errorf("expected lockout %v, got %v", lockedUntil, got.LockedUntil)
	}

	// Clearing the lockout persists as NULL, read back as zero time.
	got.FailedLogins = 0
	got.LockedUntil = time.Time{}
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	cleared, err := store.GetByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cleared.FailedLogins != 0 || !cleared.LockedUntil.IsZero() {
		t.Errorf("expected lockout cleared, got %+v", cleared)
	}
}

func TestSQLiteStore_CountAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, acct := range []domain.Account{
		{ID: "acc-1", Email: "one@example.org", Role: domain.RoleAdmin},
		{ID: "acc-2", Email: "two@example.org", Role: domain.RoleOrganizer},
	} {
		if err := store.Save(ctx, acct); err != nil {
			t.Fatalf("save %s: %v", acct.ID, err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 accounts, got %d", n)
	}

	if err := store.Delete(ctx, "acc-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 account after delete, got %d", n)
	}
}
