package projections

import (
	"context"
	"time"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// GetCalendarQuery carries query parameters.
type GetCalendarQuery struct {
	TeamKey string
}

// GetCalendarDeps holds dependencies for GetCalendar.
type GetCalendarDeps struct {
	PracticeStore practiceStore.Store
	Window        practice.Window
	Now           func() time.Time
}

// GetCalendarResult carries the rendered calendar for one team: month
// blocks with availability and checked state, plus the derived summary.
type GetCalendarResult struct {
	Months  []practice.MonthBlock
	Summary practice.Summary
	Cap     int
}

// QueryGetCalendar rebuilds the calendar view wholesale from the team's
// stored rows. Clear-then-repopulate: switching teams can never leak
// checked state.
// POST: every checked cell corresponds to exactly one stored row
func QueryGetCalendar(ctx context.Context, query GetCalendarQuery, deps GetCalendarDeps) (GetCalendarResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	rows, err := deps.PracticeStore.ReadRows(ctx, query.TeamKey)
	if err != nil {
		return GetCalendarResult{}, err
	}
	return GetCalendarResult{
		Months:  practice.Months(deps.Window, now(), rows),
		Summary: practice.Summarize(rows),
		Cap:     deps.Window.MaxDatesPerTeam,
	}, nil
}
