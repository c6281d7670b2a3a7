package practice

import (
	"context"

	domain "regatta/internal/domain/practice"
)

// Store persists per-team practice rows and slot ranks. Reads degrade
// gracefully: absent or unparsable stored data comes back as empty
// collections, never an error, since the store only ever holds
// client-written JSON but must tolerate tampering or partial writes.
//
// Writes are full replacements. The caller owns the date-uniqueness
// invariant for rows; rank sets are validated before they reach the store.
type Store interface {
	ReadRows(ctx context.Context, teamKey string) ([]domain.Row, error)
	WriteRows(ctx context.Context, teamKey string, rows []domain.Row) error
	ReadRanks(ctx context.Context, teamKey string) ([]domain.SlotRank, error)
	WriteRanks(ctx context.Context, teamKey string, ranks []domain.SlotRank) error
	TotalHours(ctx context.Context, teamKey string) (int, error)
	// RemoveTeam clears both collections for one team key.
	RemoveTeam(ctx context.Context, teamKey string) error
	// RemoveAll clears every team's practice data for the session.
	RemoveAll(ctx context.Context) error
}
