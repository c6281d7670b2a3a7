package kv

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"regatta/internal/adapters/storage"
)

// DefaultQuotaBytes is the per-session byte budget across keys and values.
// It models the storage quota of the hosted environment; normal wizard state
// stays far below it.
const DefaultQuotaBytes = 256 * 1024

// SQLiteStore implements Store for one scope using SQLite.
type SQLiteStore struct {
	db         storage.SQLDB
	scope      string
	quotaBytes int
}

// NewSQLiteStore creates a Store bound to the given scope.
// PRE: scope is ScopeSession or ScopeDurable; quotaBytes <= 0 means default
func NewSQLiteStore(db storage.SQLDB, scope string, quotaBytes int) *SQLiteStore {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &SQLiteStore{db: db, scope: scope, quotaBytes: quotaBytes}
}

// Get retrieves a value by key.
// PRE: sessionID and key are non-empty
// POST: found is false for absent keys; err only on database failure
func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	query := "SELECT v FROM scoped_kv WHERE session_id = ? AND scope = ? AND k = ?"
	var value string
	err := s.db.QueryRowContext(ctx, query, sessionID, s.scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get: %w", err)
	}
	return value, true, nil
}

// Set writes a value, replacing any previous value for the key.
// PRE: sessionID and key are non-empty
// POST: value is stored, or ErrQuotaExceeded if the session budget would
// be exceeded (nothing written in that case)
func (s *SQLiteStore) Set(ctx context.Context, sessionID, key, value string) error {
	used, err := s.usedBytes(ctx, sessionID, key)
	if err != nil {
		return err
	}
	if used+len(key)+len(value) > s.quotaBytes {
		slog.Warn("kv_quota_exceeded", "scope", s.scope, "key", key, "used", used, "quota", s.quotaBytes)
		return ErrQuotaExceeded
	}

	query := `INSERT INTO scoped_kv (session_id, scope, k, v, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, scope, k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
	_, err = s.db.ExecContext(ctx, query, sessionID, s.scope, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

// usedBytes sums key and value sizes for the session, excluding the key
// about to be replaced.
func (s *SQLiteStore) usedBytes(ctx context.Context, sessionID, excludeKey string) (int, error) {
	query := `SELECT COALESCE(SUM(LENGTH(k) + LENGTH(v)), 0) FROM scoped_kv
		WHERE session_id = ? AND scope = ? AND k != ?`
	var used int
	if err := s.db.QueryRowContext(ctx, query, sessionID, s.scope, excludeKey).Scan(&used); err != nil {
		return 0, fmt.Errorf("kv size: %w", err)
	}
	return used, nil
}

// Remove deletes a key. Removing an absent key is a no-op.
// PRE: sessionID and key are non-empty
func (s *SQLiteStore) Remove(ctx context.Context, sessionID, key string) error {
	query := "DELETE FROM scoped_kv WHERE session_id = ? AND scope = ? AND k = ?"
	if _, err := s.db.ExecContext(ctx, query, sessionID, s.scope, key); err != nil {
		return fmt.Errorf("kv remove: %w", err)
	}
	return nil
}

// RemoveAllWithPrefix deletes every key of the session starting with prefix.
// PRE: prefix is non-empty
func (s *SQLiteStore) RemoveAllWithPrefix(ctx context.Context, sessionID, prefix string) error {
	query := "DELETE FROM scoped_kv WHERE session_id = ? AND scope = ? AND k LIKE ? ESCAPE '\\'"
	if _, err := s.db.ExecContext(ctx, query, sessionID, s.scope, escapeLike(prefix)+"%"); err != nil {
		return fmt.Errorf("kv remove prefix: %w", err)
	}
	return nil
}

// RemoveSession deletes every key of the session in this scope.
func (s *SQLiteStore) RemoveSession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM scoped_kv WHERE session_id = ? AND scope = ?"
	if _, err := s.db.ExecContext(ctx, query, sessionID, s.scope); err != nil {
		return fmt.Errorf("kv remove session: %w", err)
	}
	return nil
}

// PruneStale deletes entries in this scope not touched since the cutoff.
// POST: returns the number of entries removed
func (s *SQLiteStore) PruneStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := "DELETE FROM scoped_kv WHERE scope = ? AND updated_at < ?"
	res, err := s.db.ExecContext(ctx, query, s.scope, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("kv prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	if n > 0 {
		slog.Info("kv_pruned", "scope", s.scope, "removed", n)
	}
	return int(n), nil
}

// escapeLike escapes LIKE metacharacters so prefixes match literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
