package projections

import (
	"context"
	"encoding/json"
	"time"

	"regatta/internal/adapters/storage/submission"
	"regatta/internal/domain/practice"
)

// GetSubmissionsQuery carries query parameters.
type GetSubmissionsQuery struct {
	EventID string
	Limit   int
	Offset  int
}

// SubmissionView is one registration in the race-office listing, with the
// payload decoded for display.
type SubmissionView struct {
	ID           string
	ManagerName  string
	ManagerEmail string
	SubmittedAt  time.Time
	Teams        []practice.TeamPayload
	TotalHours   int
}

// GetSubmissionsDeps holds dependencies for GetSubmissions.
type GetSubmissionsDeps struct {
	SubmissionStore submission.Store
}

// GetSubmissionsResult carries the listing plus the event total.
type GetSubmissionsResult struct {
	Submissions []SubmissionView
	Total       int
}

// QueryGetSubmissions lists an event's registrations, newest first, with
// each stored payload decoded back into its team structure. A payload that
// fails to decode is listed with empty teams rather than hiding the record.
func QueryGetSubmissions(ctx context.Context, query GetSubmissionsQuery, deps GetSubmissionsDeps) (GetSubmissionsResult, error) {
	subs, err := deps.SubmissionStore.ListByEvent(ctx, query.EventID, query.Limit, query.Offset)
	if err != nil {
		return GetSubmissionsResult{}, err
	}
	total, err := deps.SubmissionStore.Count(ctx, query.EventID)
	if err != nil {
		return GetSubmissionsResult{}, err
	}

	result := GetSubmissionsResult{Total: total}
	for _, s := range subs {
		view := SubmissionView{
			ID:           s.ID,
			ManagerName:  s.ManagerName,
			ManagerEmail: s.ManagerEmail,
			SubmittedAt:  s.SubmittedAt,
		}
		var teams []practice.TeamPayload
		if err := json.Unmarshal([]byte(s.Payload), &teams); err == nil {
			view.Teams = teams
			for _, t := range teams {
				view.TotalHours += practice.TotalHours(t.Dates)
			}
		}
		result.Submissions = append(result.Submissions, view)
	}
	return result, nil
}
