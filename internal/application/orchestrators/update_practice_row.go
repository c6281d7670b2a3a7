package orchestrators

import (
	"context"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// UpdatePracticeRowInput carries input for the orchestrator.
type UpdatePracticeRowInput struct {
	TeamKey       string
	Date          string
	DurationHours int
	Helper        string
}

// UpdatePracticeRowDeps holds dependencies for UpdatePracticeRow.
type UpdatePracticeRowDeps struct {
	PracticeStore practiceStore.Store
}

// UpdatePracticeRowResult carries the updated rows and derived summary.
type UpdatePracticeRowResult struct {
	Rows    []practice.Row
	Summary practice.Summary
	Found   bool
}

// ExecuteUpdatePracticeRow changes the duration or helper of a checked
// date's row, keyed by date rather than position, and recomputes the
// derived hour/role summary.
// PRE: the date has been checked for the team
// POST: the row holds the new attributes; summary reflects the row set
func ExecuteUpdatePracticeRow(ctx context.Context, input UpdatePracticeRowInput, deps UpdatePracticeRowDeps) (UpdatePracticeRowResult, error) {
	probe := practice.Row{Date: input.Date, DurationHours: input.DurationHours, Helper: input.Helper}
	if err := probe.Validate(); err != nil {
		return UpdatePracticeRowResult{}, err
	}

	rows, err := deps.PracticeStore.ReadRows(ctx, input.TeamKey)
	if err != nil {
		return UpdatePracticeRowResult{}, err
	}
	updated, found := practice.UpdateRow(rows, input.Date, input.DurationHours, input.Helper)
	if !found {
		return UpdatePracticeRowResult{Rows: rows, Summary: practice.Summarize(rows)}, nil
	}
	if err := deps.PracticeStore.WriteRows(ctx, input.TeamKey, updated); err != nil {
		return UpdatePracticeRowResult{}, err
	}
	return UpdatePracticeRowResult{Rows: updated, Summary: practice.Summarize(updated), Found: true}, nil
}
