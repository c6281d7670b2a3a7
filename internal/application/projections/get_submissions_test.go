package projections

import (
	"context"
	"fmt"
	"testing"
	"time"

	"regatta/internal/adapters/storage/submission"
)

// mockSubmissionStore serves a fixed submission list.
type mockSubmissionStore struct {
	subs []submission.Submission
}

func (m *mockSubmissionStore) GetByID(_ context.Context, id string) (submission.Submission, error) {
	for _, s := range m.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return submission.Submission{}, fmt.Errorf("submission %s not found", id)
}

func (m *mockSubmissionStore) Save(_ context.Context, value submission.Submission) error {
	m.subs = append(m.subs, value)
	return nil
}

func (m *mockSubmissionStore) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]submission.Submission, error) {
	var out []submission.Submission
	for _, s := range m.subs {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSubmissionStore) Count(_ context.Context, eventID string) (int, error) {
	n := 0
	for _, s := range m.subs {
		if s.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func TestQueryGetSubmissions_DecodesPayloads(t *testing.T) {
	submittedAt := time.Date(2025, 1, 20, 10, 30, 0, 0, time.UTC)
	store := &mockSubmissionStore{subs: []submission.Submission{
		{
			ID:           "sub-1",
			EventID:      "ev-1",
			ManagerName:  "Alex Rivers",
			ManagerEmail: "alex@example.org",
			SubmittedAt:  submittedAt,
			Payload: `[{"team_key":"t1","dates":[` +
				`{"pref_date":"2025-01-08","duration_hours":2,"helper":"S"},` +
				`{"pref_date":"2025-01-10","duration_hours":1,"helper":"NONE"}],` +
				`"slot_ranks":[{"rank":1,"slot_code":"SAT2_0800_1000"}]}]`,
		},
		{ID: "sub-2", EventID: "ev-2", Payload: `[]`},
	}}

	result, err := QueryGetSubmissions(context.Background(), GetSubmissionsQuery{EventID: "ev-1", Limit: 50}, GetSubmissionsDeps{
		SubmissionStore: store,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("expected total 1, got %d", result.Total)
	}
	if len(result.Submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(result.Submissions))
	}
	view := result.Submissions[0]
	if view.ID != "sub-1" || view.ManagerName != "Alex Rivers" {
		t.Errorf("unexpected view identity: %s %s", view.ID, view.ManagerName)
	}
	if !view.SubmittedAt.Equal(submittedAt) {
		t.Errorf("unexpected submitted time: %v", view.SubmittedAt)
	}
	if len(view.Teams) != 1 {
		t.Fatalf("expected 1 team decoded, got %d", len(view.Teams))
	}
	team := view.Teams[0]
	if team.TeamKey != "t1" || len(team.Dates) != 2 || len(team.SlotRanks) != 1 {
		t.Errorf("unexpected decoded team: %+v", team)
	}
	if view.TotalHours != 3 {
		t.Errorf("expected 3 total hours, got %d", view.TotalHours)
	}
}

func TestQueryGetSubmissions_UndecodablePayload(t *testing.T) {
	store := &mockSubmissionStore{subs: []submission.Submission{
		{ID: "sub-1", EventID: "ev-1", ManagerName: "Alex Rivers", Payload: `{not json`},
	}}

	result, err := QueryGetSubmissions(context.Background(), GetSubmissionsQuery{EventID: "ev-1"}, GetSubmissionsDeps{
		SubmissionStore: store,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Submissions) != 1 {
		t.Fatalf("expected the record listed despite the bad payload, got %d", len(result.Submissions))
	}
	view := result.Submissions[0]
	if len(view.Teams) != 0 {
		t.Errorf("expected empty teams for undecodable payload, got %d", len(view.Teams))
	}
	if view.TotalHours != 0 {
		t.Errorf("expected zero hours, got %d", view.TotalHours)
	}
}

func TestQueryGetSubmissions_Pagination(t *testing.T) {
	store := &mockSubmissionStore{}
	for i := 1; i <= 5; i++ {
		store.subs = append(store.subs, submission.Submission{
			ID:      fmt.Sprintf("sub-%d", i),
			EventID: "ev-1",
			Payload: `[]`,
		})
	}

	result, err := QueryGetSubmissions(context.Background(), GetSubmissionsQuery{EventID: "ev-1", Limit: 2, Offset: 2}, GetSubmissionsDeps{
		SubmissionStore: store,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Total)
	}
	if len(result.Submissions) != 2 {
		t.Fatalf("expected 2 submissions on the page, got %d", len(result.Submissions))
	}
	if result.Submissions[0].ID != "sub-3" {
		t.Errorf("expected page to start at sub-3, got %s", result.Submissions[0].ID)
	}
}
