package kv

import (
	"context"
	"errors"
	"time"
)

// Scopes. Session-scoped entries survive a reload but carry a TTL and are
// pruned when stale; durable entries persist across registration sessions.
const (
	ScopeSession = "session"
	ScopeDurable = "durable"
)

// ErrQuotaExceeded reports that a Set would push a session past its byte
// budget. Callers prune stale entries and retry at most once, then degrade
// to a warning; the error never propagates past the wizard engine.
var ErrQuotaExceeded = errors.New("storage quota exceeded for session")

// Store provides namespaced get/set/remove over the scoped key-value table.
// Every write is immediately visible to subsequent reads. Absent keys are
// reported via the found flag, never as an error.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (value string, found bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
	Remove(ctx context.Context, sessionID, key string) error
	RemoveAllWithPrefix(ctx context.Context, sessionID, prefix string) error
	RemoveSession(ctx context.Context, sessionID string) error
	// PruneStale deletes entries not touched since the cutoff and returns
	// how many were removed.
	PruneStale(ctx context.Context, cutoff time.Time) (int, error)
}
