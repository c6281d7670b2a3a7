package orchestrators

import (
	"context"
	"errors"
	"time"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// TogglePracticeDateInput carries input for the orchestrator.
type TogglePracticeDateInput struct {
	TeamKey string
	Date    string // YYYY-MM-DD
	Checked bool
}

// TogglePracticeDateDeps holds dependencies for TogglePracticeDate.
type TogglePracticeDateDeps struct {
	PracticeStore practiceStore.Store
	Window        practice.Window
	Now           func() time.Time
}

// TogglePracticeDateResult carries the outcome. Rejected is true when a
// check would exceed the per-team date cap; the checkbox reverts and no
// row is created.
type TogglePracticeDateResult struct {
	Rows     []practice.Row
	Rejected bool
	Message  string
}

// ExecuteTogglePracticeDate checks or unchecks a calendar date for a team.
// PRE: the date belongs to the rendered calendar for the team's window
// POST: on check, a default row (1 hour, no helper) exists for the date
// unless the cap was reached; on uncheck, the row is removed
// INVARIANT: row count never exceeds the window's date cap
func ExecuteTogglePracticeDate(ctx context.Context, input TogglePracticeDateInput, deps TogglePracticeDateDeps) (TogglePracticeDateResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	rows, err := deps.PracticeStore.ReadRows(ctx, input.TeamKey)
	if err != nil {
		return TogglePracticeDateResult{}, err
	}

	if !input.Checked {
		updated := practice.UncheckDate(rows, input.Date)
		if err := deps.PracticeStore.WriteRows(ctx, input.TeamKey, updated); err != nil {
			return TogglePracticeDateResult{}, err
		}
		return TogglePracticeDateResult{Rows: updated}, nil
	}

	updated, err := practice.CheckDate(deps.Window, rows, input.Date, now())
	if err != nil {
		if errors.Is(err, practice.ErrTooManyDates) {
			return TogglePracticeDateResult{
				Rows:     rows,
				Rejected: true,
				Message:  "The maximum number of practice dates for this team is already selected.",
			}, nil
		}
		if errors.Is(err, practice.ErrDuplicateDate) {
			// Already checked; treat as settled.
			return TogglePracticeDateResult{Rows: rows}, nil
		}
		return TogglePracticeDateResult{
			Rows:     rows,
			Rejected: true,
			Message:  "This date cannot be selected.",
		}, nil
	}
	if err := deps.PracticeStore.WriteRows(ctx, input.TeamKey, updated); err != nil {
		return TogglePracticeDateResult{}, err
	}
	return TogglePracticeDateResult{Rows: updated}, nil
}
