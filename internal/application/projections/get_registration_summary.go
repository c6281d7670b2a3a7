package projections

import (
	"context"

	eventStore "regatta/internal/adapters/storage/event"
	"regatta/internal/application/wizard"
	eventDomain "regatta/internal/domain/event"
	"regatta/internal/domain/practice"
	"regatta/internal/domain/team"
	wiz "regatta/internal/domain/wizard"
)

// GetRegistrationSummaryQuery carries query parameters.
type GetRegistrationSummaryQuery struct {
	SessionID string
}

// GetRegistrationSummaryDeps holds dependencies for GetRegistrationSummary.
type GetRegistrationSummaryDeps struct {
	Engine     *wizard.Engine
	EventStore eventStore.Store
}

// TeamSummary is one team's view on the summary step.
type TeamSummary struct {
	Team    team.Team
	Rows    []practice.Row
	Ranks   []practice.SlotRank
	Summary practice.Summary
	Payload practice.TeamPayload
}

// GetRegistrationSummaryResult carries everything the summary step shows.
type GetRegistrationSummaryResult struct {
	Event   eventDomain.Event
	Contact wiz.FormData
	Addons  wiz.FormData
	Teams   []TeamSummary
}

// QueryGetRegistrationSummary assembles the final review from store-backed
// state only, so a reload of the summary step reconstructs the identical
// view the user will submit.
// POST: Payload fields equal what ExecuteSubmitRegistration would produce
func QueryGetRegistrationSummary(ctx context.Context, query GetRegistrationSummaryQuery, deps GetRegistrationSummaryDeps) (GetRegistrationSummaryResult, error) {
	var result GetRegistrationSummaryResult

	eventID, err := deps.Engine.EventID(ctx, query.SessionID)
	if err != nil {
		return result, err
	}
	if eventID != "" {
		if ev, err := deps.EventStore.GetByID(ctx, eventID); err == nil {
			result.Event = ev
		}
	}

	result.Contact, err = deps.Engine.StepData(ctx, query.SessionID, wiz.StepContact)
	if err != nil {
		return result, err
	}
	result.Addons, err = deps.Engine.StepData(ctx, query.SessionID, wiz.StepAddons)
	if err != nil {
		return result, err
	}

	teams, err := deps.Engine.Teams(ctx, query.SessionID)
	if err != nil {
		return result, err
	}
	store := deps.Engine.PracticeStore(query.SessionID)
	for _, t := range teams {
		rows, err := store.ReadRows(ctx, t.Key())
		if err != nil {
			return result, err
		}
		ranks, err := store.ReadRanks(ctx, t.Key())
		if err != nil {
			return result, err
		}
		result.Teams = append(result.Teams, TeamSummary{
			Team:    t,
			Rows:    rows,
			Ranks:   ranks,
			Summary: practice.Summarize(rows),
			Payload: practice.BuildPayload(t.Key(), rows, ranks),
		})
	}
	return result, nil
}
