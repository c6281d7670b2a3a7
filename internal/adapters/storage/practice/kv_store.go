package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"regatta/internal/adapters/storage/kv"
	domain "regatta/internal/domain/practice"
)

// Storage key prefixes. Rows and ranks live under separate prefixed keys
// incorporating the team key; no caller builds these strings itself.
const (
	rowsPrefix  = "practice/rows/"
	ranksPrefix = "practice/ranks/"
)

// storedRank is the persisted form of a SlotRank. The bucket is stored
// explicitly so a rank set survives even if a slot code later leaves the
// catalog.
type storedRank struct {
	Rank     int    `json:"rank"`
	Bucket   int    `json:"bucket"`
	SlotCode string `json:"slot_code"`
}

// KVStore implements Store on top of the scoped key-value store, bound to
// one registration session.
type KVStore struct {
	kv        kv.Store
	sessionID string
}

// NewKVStore creates a practice store scoped to the given session.
// PRE: sessionID is non-empty
func NewKVStore(store kv.Store, sessionID string) *KVStore {
	return &KVStore{kv: store, sessionID: sessionID}
}

// Compile-time check that *KVStore satisfies Store.
var _ Store = (*KVStore)(nil)

// ReadRows returns the team's practice rows.
// POST: Returns [] for absent or unparsable data, never an error for either
func (s *KVStore) ReadRows(ctx context.Context, teamKey string) ([]domain.Row, error) {
	raw, found, err := s.kv.Get(ctx, s.sessionID, rowsPrefix+teamKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.Row{}, nil
	}
	var rows []domain.Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		slog.Warn("practice_rows_unparsable", "team", teamKey, "error", err.Error())
		return []domain.Row{}, nil
	}
	return rows, nil
}

// WriteRows replaces the team's row set wholesale. An empty set removes the
// stored key.
// PRE: caller has enforced date uniqueness
func (s *KVStore) WriteRows(ctx context.Context, teamKey string, rows []domain.Row) error {
	key := rowsPrefix + teamKey
	if len(rows) == 0 {
		return s.kv.Remove(ctx, s.sessionID, key)
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}
	return s.kv.Set(ctx, s.sessionID, key, string(raw))
}

// ReadRanks returns the team's slot ranks.
// POST: Returns [] for absent or unparsable data
func (s *KVStore) ReadRanks(ctx context.Context, teamKey string) ([]domain.SlotRank, error) {
	raw, found, err := s.kv.Get(ctx, s.sessionID, ranksPrefix+teamKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.SlotRank{}, nil
	}
	var stored []storedRank
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		slog.Warn("practice_ranks_unparsable", "team", teamKey, "error", err.Error())
		return []domain.SlotRank{}, nil
	}
	ranks := make([]domain.SlotRank, 0, len(stored))
	for _, r := range stored {
		ranks = append(ranks, domain.SlotRank{Rank: r.Rank, Bucket: r.Bucket, SlotCode: r.SlotCode})
	}
	return ranks, nil
}

// WriteRanks replaces the team's rank set wholesale. An empty set removes
// the stored key.
// PRE: the set has passed ValidateRankSet
func (s *KVStore) WriteRanks(ctx context.Context, teamKey string, ranks []domain.SlotRank) error {
	key := ranksPrefix + teamKey
	if len(ranks) == 0 {
		return s.kv.Remove(ctx, s.sessionID, key)
	}
	stored := make([]storedRank, 0, len(ranks))
	for _, r := range ranks {
		stored = append(stored, storedRank{Rank: r.Rank, Bucket: r.Bucket, SlotCode: r.SlotCode})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal ranks: %w", err)
	}
	return s.kv.Set(ctx, s.sessionID, key, string(raw))
}

// TotalHours sums duration across the team's rows. Used by step validation
// to enforce the configured minimum before the practice step completes.
func (s *KVStore) TotalHours(ctx context.Context, teamKey string) (int, error) {
	rows, err := s.ReadRows(ctx, teamKey)
	if err != nil {
		return 0, err
	}
	return domain.TotalHours(rows), nil
}

// RemoveTeam clears both collections for one team key.
func (s *KVStore) RemoveTeam(ctx context.Context, teamKey string) error {
	if err := s.kv.Remove(ctx, s.sessionID, rowsPrefix+teamKey); err != nil {
		return err
	}
	return s.kv.Remove(ctx, s.sessionID, ranksPrefix+teamKey)
}

// RemoveAll clears every team's practice data for the session.
func (s *KVStore) RemoveAll(ctx context.Context) error {
	if err := s.kv.RemoveAllWithPrefix(ctx, s.sessionID, rowsPrefix); err != nil {
		return err
	}
	return s.kv.RemoveAllWithPrefix(ctx, s.sessionID, ranksPrefix)
}
