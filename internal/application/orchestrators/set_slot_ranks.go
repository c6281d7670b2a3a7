package orchestrators

import (
	"context"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// SetSlotRanksInput carries the full candidate set from all six rank
// selectors; empty selections are included with an empty slot code.
type SetSlotRanksInput struct {
	TeamKey    string
	Selections []practice.RankSelection
}

// SetSlotRanksDeps holds dependencies for SetSlotRanks.
type SetSlotRanksDeps struct {
	PracticeStore practiceStore.Store
	Catalog       practice.SlotCatalog
}

// SetSlotRanksResult carries the settled rank set. When Reverted is true
// the edit was rejected wholesale and Ranks holds the last persisted valid
// set, read back from the store.
type SetSlotRanksResult struct {
	Ranks    []practice.SlotRank
	Reverted bool
	Message  string
}

// ExecuteSetSlotRanks applies a rank-selector edit with all-or-nothing
// semantics: the candidate set built from every selector must satisfy
// global slot-code uniqueness, or the whole edit reverts to the last
// persisted state.
// POST: the stored rank set is either the full candidate set or unchanged
func ExecuteSetSlotRanks(ctx context.Context, input SetSlotRanksInput, deps SetSlotRanksDeps) (SetSlotRanksResult, error) {
	candidate, err := practice.BuildRankSet(deps.Catalog, input.Selections)
	if err == nil {
		err = practice.ValidateRankSet(candidate)
	}
	if err != nil {
		prior, readErr := deps.PracticeStore.ReadRanks(ctx, input.TeamKey)
		if readErr != nil {
			return SetSlotRanksResult{}, readErr
		}
		return SetSlotRanksResult{
			Ranks:    prior,
			Reverted: true,
			Message:  rankMessage(err),
		}, nil
	}

	if err := deps.PracticeStore.WriteRanks(ctx, input.TeamKey, candidate); err != nil {
		return SetSlotRanksResult{}, err
	}
	return SetSlotRanksResult{Ranks: candidate}, nil
}

// rankMessage maps a rank-set violation to its user-facing message.
func rankMessage(err error) string {
	switch err {
	case practice.ErrDuplicateSlot:
		return "That time slot is already selected for another preference."
	case practice.ErrDuplicateLadder:
		return "Each preference rank can be used only once per ladder."
	case practice.ErrUnknownSlotCode:
		return "One of the selected time slots is not available."
	case practice.ErrInvalidRank:
		return "Preference ranks must be between 1 and 3."
	default:
		return "The slot preferences could not be saved."
	}
}
