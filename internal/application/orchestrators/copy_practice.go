package orchestrators

import (
	"context"
	"errors"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// Copy modes.
const (
	CopyModeReplace = "replace"
	CopyModeAppend  = "append"
)

// ErrInvalidCopyMode reports an unknown copy mode.
var ErrInvalidCopyMode = errors.New("copy mode must be 'replace' or 'append'")

// ErrCopySameTeam reports a copy onto the source team itself.
var ErrCopySameTeam = errors.New("cannot copy a team's practice data onto itself")

// CopyPracticeInput carries input for the orchestrator.
type CopyPracticeInput struct {
	FromTeamKey string
	ToTeamKey   string
	Mode        string
}

// CopyPracticeDeps holds dependencies for CopyPractice.
type CopyPracticeDeps struct {
	PracticeStore practiceStore.Store
	Window        practice.Window
}

// CopyPracticeResult carries the destination team's state after the copy.
type CopyPracticeResult struct {
	Rows    []practice.Row
	Ranks   []practice.SlotRank
	Dropped int // source rows excluded by the window/weekday filter or cap
}

// ExecuteCopyPractice copies one team's practice rows and slot ranks to
// another. Rows outside the current window or weekday set are silently
// dropped; replace mode discards the destination's rows, append mode keeps
// them; both skip duplicate dates and cap at the per-team maximum. Ranks
// copy verbatim (slot codes are not window-dependent), capped at three per
// ladder. The caller re-renders from store state afterwards.
// POST: destination row count <= the window's date cap
func ExecuteCopyPractice(ctx context.Context, input CopyPracticeInput, deps CopyPracticeDeps) (CopyPracticeResult, error) {
	if input.Mode != CopyModeReplace && input.Mode != CopyModeAppend {
		return CopyPracticeResult{}, ErrInvalidCopyMode
	}
	if input.FromTeamKey == input.ToTeamKey {
		return CopyPracticeResult{}, ErrCopySameTeam
	}

	sourceRows, err := deps.PracticeStore.ReadRows(ctx, input.FromTeamKey)
	if err != nil {
		return CopyPracticeResult{}, err
	}
	sourceRanks, err := deps.PracticeStore.ReadRanks(ctx, input.FromTeamKey)
	if err != nil {
		return CopyPracticeResult{}, err
	}

	filtered := deps.Window.FilterRows(sourceRows)
	dropped := len(sourceRows) - len(filtered)

	var base []practice.Row
	if input.Mode == CopyModeAppend {
		base, err = deps.PracticeStore.ReadRows(ctx, input.ToTeamKey)
		if err != nil {
			return CopyPracticeResult{}, err
		}
	}

	rows := make([]practice.Row, 0, deps.Window.MaxDatesPerTeam)
	seen := make(map[string]bool)
	for _, r := range base {
		if len(rows) >= deps.Window.MaxDatesPerTeam {
			break
		}
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		rows = append(rows, r)
	}
	for _, r := range filtered {
		if len(rows) >= deps.Window.MaxDatesPerTeam {
			dropped++
			continue
		}
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		rows = append(rows, r)
	}

	ranks := capRanksPerLadder(sourceRanks, practice.MaxRank)

	if err := deps.PracticeStore.WriteRows(ctx, input.ToTeamKey, rows); err != nil {
		return CopyPracticeResult{}, err
	}
	if err := deps.PracticeStore.WriteRanks(ctx, input.ToTeamKey, ranks); err != nil {
		return CopyPracticeResult{}, err
	}
	return CopyPracticeResult{Rows: rows, Ranks: ranks, Dropped: dropped}, nil
}

// capRanksPerLadder keeps at most n entries per duration bucket.
func capRanksPerLadder(ranks []practice.SlotRank, n int) []practice.SlotRank {
	perBucket := make(map[int]int)
	out := make([]practice.SlotRank, 0, len(ranks))
	for _, r := range ranks {
		if perBucket[r.Bucket] >= n {
			continue
		}
		perBucket[r.Bucket]++
		out = append(out, r)
	}
	return out
}
