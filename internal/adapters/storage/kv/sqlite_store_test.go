package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"regatta/internal/adapters/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func TestSQLiteStore_SetGetRemove(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 0)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "sess-1", "wizard/step")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected absent key")
	}

	if err := store.Set(ctx, "sess-1", "wizard/step", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := store.Get(ctx, "sess-1", "wizard/step")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != "2" {
		t.Fatalf("expected 2, got %q (found=%v)", value, found)
	}

	// Overwrite replaces in place.
	if err := store.Set(ctx, "sess-1", "wizard/step", "3"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = store.Get(ctx, "sess-1", "wizard/step")
	if value != "3" {
		t.Fatalf("expected 3 after overwrite, got %q", value)
	}

	if err := store.Remove(ctx, "sess-1", "wizard/step"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, found, _ = store.Get(ctx, "sess-1", "wizard/step")
	if found {
		t.Fatal("expected key removed")
	}

	// Removing an absent key is a no-op.
	if err := store.Remove(ctx, "sess-1", "wizard/step"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestSQLiteStore_SessionIsolation(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "sess-1", "wizard/step", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, found, err := store.Get(ctx, "sess-2", "wizard/step")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected sessions isolated")
	}
}

func TestSQLiteStore_ScopeIsolation(t *testing.T) {
	db := openTestDB(t)
	sessionStore := NewSQLiteStore(db, ScopeSession, 0)
	durableStore := NewSQLiteStore(db, ScopeDurable, 0)
	ctx := context.Background()

	if err := sessionStore.Set(ctx, "sess-1", "shared/key", "session value"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if err := durableStore.Set(ctx, "sess-1", "shared/key", "durable value"); err != nil {
		t.Fatalf("set durable: %v", err)
	}

	value, _, _ := sessionStore.Get(ctx, "sess-1", "shared/key")
	if value != "session value" {
		t.Errorf("expected session value, got %q", value)
	}
	value, _, _ = durableStore.Get(ctx, "sess-1", "shared/key")
	if value != "durable value" {
		t.Errorf("expected durable value, got %q", value)
	}

	// Removing the session scope leaves the durable scope alone.
	if err := sessionStore.RemoveSession(ctx, "sess-1"); err != nil {
		t.Fatalf("remove session: %v", err)
	}
	_, found, _ := durableStore.Get(ctx, "sess-1", "shared/key")
	if !found {
		t.Error("expected durable entry to survive session removal")
	}
}

func TestSQLiteStore_QuotaExceeded(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 32)
	ctx := context.Background()

	if err := store.Set(ctx, "sess-1", "a", "0123456789"); err != nil {
		t.Fatalf("set within quota: %v", err)
	}

	// 1 + 30 bytes on top of the existing 11 exceeds the 32-byte quota.
	err := store.Set(ctx, "sess-1", "b", "012345678901234567890123456789")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	_, found, _ := store.Get(ctx, "sess-1", "b")
	if found {
		t.Error("expected nothing written on quota failure")
	}

	// Replacing a key excludes its current size from the usage sum.
	if err := store.Set(ctx, "sess-1", "a", "9876543210"); err != nil {
		t.Fatalf("expected same-size replace to fit, got %v", err)
	}

	// Quota is per session, not global.
	if err := store.Set(ctx, "sess-2", "a", "0123456789"); err != nil {
		t.Fatalf("expected other session unaffected, got %v", err)
	}
}

func TestSQLiteStore_RemoveAllWithPrefix(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 0)
	ctx := context.Background()

	seed := map[string]string{
		"practice/rows/t1":  "[]",
		"practice/ranks/t1": "[]",
		"practice/rows/t2":  "[]",
		"wizard/step":       "4",
	}
	for k, v := range seed {
		if err := store.Set(ctx, "sess-1", k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if err := store.RemoveAllWithPrefix(ctx, "sess-1", "practice/rows/"); err != nil {
		t.Fatalf("remove prefix: %v", err)
	}
	for _, k := range []string{"practice/rows/t1", "practice/rows/t2"} {
		if _, found, _ := store.Get(ctx, "sess-1", k); found {
			t.Errorf("expected %s removed", k)
		}
	}
	for _, k := range []string{"practice/ranks/t1", "wizard/step"} {
		if _, found, _ := store.Get(ctx, "sess-1", k); !found {
			t.Errorf("expected %s to survive", k)
		}
	}
}

func TestSQLiteStore_RemoveAllWithPrefix_LiteralMatch(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 0)
	ctx := context.Background()

	// An underscore in the prefix must not act as a LIKE wildcard.
	if err := store.Set(ctx, "sess-1", "a_b", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "sess-1", "axb", "y"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.RemoveAllWithPrefix(ctx, "sess-1", "a_"); err != nil {
		t.Fatalf("remove prefix: %v", err)
	}
	if _, found, _ := store.Get(ctx, "sess-1", "a_b"); found {
		t.Error("expected a_b removed")
	}
	if _, found, _ := store.Get(ctx, "sess-1", "axb"); !found {
		t.Error("expected axb to survive a literal-prefix removal")
	}
}

func TestSQLiteStore_PruneStale(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db, ScopeSession, 0)
	durable := NewSQLiteStore(db, ScopeDurable, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "sess-old", "wizard/step", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "sess-new", "wizard/step", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := durable.Set(ctx, "sess-old", "wizard/submitted", "sub-1"); err != nil {
		t.Fatalf("durable set: %v", err)
	}

	// Age one session's entries past the cutoff, across both scopes.
	stale := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	if _, err := db.Exec("UPDATE scoped_kv SET updated_at = ? WHERE session_id = ?", stale, "sess-old"); err != nil {
		t.Fatalf("age entry: %v", err)
	}

	removed, err := store.PruneStale(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 entry pruned, got %d", removed)
	}
	if _, found, _ := store.Get(ctx, "sess-old", "wizard/step"); found {
		t.Error("expected stale entry removed")
	}
	if _, found, _ := store.Get(ctx, "sess-new", "wizard/step"); !found {
		t.Error("expected fresh entry to survive")
	}

	// Session-scope pruning never touches durable entries, however old.
	if _, found, _ := durable.Get(ctx, "sess-old", "wizard/submitted"); !found {
		t.Error("expected durable entry to survive session pruning")
	}
}
