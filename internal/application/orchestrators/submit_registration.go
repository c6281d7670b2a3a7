package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"regatta/internal/adapters/email"
	eventStore "regatta/internal/adapters/storage/event"
	"regatta/internal/adapters/storage/submission"
	"regatta/internal/application/wizard"
	"regatta/internal/domain/practice"
	wiz "regatta/internal/domain/wizard"
)

// Submission errors
var (
	ErrNoEventSelected    = errors.New("no event selected for this session")
	ErrNoTeams            = errors.New("no teams configured for this session")
	ErrAlreadySubmitted   = errors.New("this registration has already been submitted")
	ErrPracticeIncomplete = errors.New("practice planning is incomplete")
	ErrConsentRequired    = errors.New("consent has not been given for this session")
)

// SubmitRegistrationInput carries input for the orchestrator.
type SubmitRegistrationInput struct {
	SessionID string
}

// SubmitRegistrationDeps holds dependencies for SubmitRegistration.
type SubmitRegistrationDeps struct {
	Engine          *wizard.Engine
	EventStore      eventStore.Store
	SubmissionStore submission.Store
	Sender          email.Sender

	MinPracticeHours int
	ReplyTo          string
	Now              func() time.Time
}

// SubmitRegistrationResult carries the persisted submission and the payload
// that was produced from store state.
type SubmitRegistrationResult struct {
	SubmissionID string
	Payloads     []practice.TeamPayload
}

// ExecuteSubmitRegistration builds the submission payload from canonical
// store state, re-validating every team, persists it, and sends the
// confirmation email. Email failure is logged but does not fail the
// submission; the record is already durable at that point.
// PRE: the summary step recorded consent (ConfirmSummary); refused otherwise
// POST: one submission row exists; the session is marked submitted
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) (SubmitRegistrationResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	minHours := deps.MinPracticeHours
	if minHours <= 0 {
		minHours = wizard.DefaultMinPracticeHours
	}

	if id, err := deps.Engine.SubmittedID(ctx, input.SessionID); err != nil {
		return SubmitRegistrationResult{}, err
	} else if id != "" {
		return SubmitRegistrationResult{SubmissionID: id}, ErrAlreadySubmitted
	}

	eventID, err := deps.Engine.EventID(ctx, input.SessionID)
	if err != nil {
		return SubmitRegistrationResult{}, err
	}
	if eventID == "" {
		return SubmitRegistrationResult{}, ErrNoEventSelected
	}
	ev, err := deps.EventStore.GetByID(ctx, eventID)
	if err != nil {
		return SubmitRegistrationResult{}, fmt.Errorf("load event: %w", err)
	}

	teams, err := deps.Engine.Teams(ctx, input.SessionID)
	if err != nil {
		return SubmitRegistrationResult{}, err
	}
	if len(teams) == 0 {
		return SubmitRegistrationResult{}, ErrNoTeams
	}

	if given, err := deps.Engine.ConsentGiven(ctx, input.SessionID); err != nil {
		return SubmitRegistrationResult{}, err
	} else if !given {
		return SubmitRegistrationResult{}, ErrConsentRequired
	}

	contact, err := deps.Engine.StepData(ctx, input.SessionID, wiz.StepContact)
	if err != nil {
		return SubmitRegistrationResult{}, err
	}

	// Re-validate from canonical store state; the summary step's earlier
	// validation may have run against state that has since degraded.
	store := deps.Engine.PracticeStore(input.SessionID)
	payloads := make([]practice.TeamPayload, 0, len(teams))
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		rows, err := store.ReadRows(ctx, t.Key())
		if err != nil {
			return SubmitRegistrationResult{}, err
		}
		if err := practice.ValidateRows(rows); err != nil {
			return SubmitRegistrationResult{}, fmt.Errorf("%w: team %s: %v", ErrPracticeIncomplete, t.Key(), err)
		}
		if len(rows) == 0 || practice.TotalHours(rows) < minHours {
			return SubmitRegistrationResult{}, fmt.Errorf("%w: team %s", ErrPracticeIncomplete, t.Key())
		}
		ranks, err := store.ReadRanks(ctx, t.Key())
		if err != nil {
			return SubmitRegistrationResult{}, err
		}
		if err := practice.ValidateRankSet(ranks); err != nil {
			return SubmitRegistrationResult{}, fmt.Errorf("%w: team %s: %v", ErrPracticeIncomplete, t.Key(), err)
		}
		payloads = append(payloads, practice.BuildPayload(t.Key(), rows, ranks))
		teamNames[t.Key()] = t.Name
	}

	raw, err := json.Marshal(payloads)
	if err != nil {
		return SubmitRegistrationResult{}, fmt.Errorf("marshal payload: %w", err)
	}

	sub := submission.Submission{
		ID:           uuid.New().String(),
		SessionID:    input.SessionID,
		EventID:      eventID,
		ManagerName:  contact.Get(wizard.FieldManagerName),
		ManagerEmail: contact.Get(wizard.FieldManagerEmail),
		Payload:      string(raw),
		SubmittedAt:  now(),
	}
	if err := deps.SubmissionStore.Save(ctx, sub); err != nil {
		return SubmitRegistrationResult{}, fmt.Errorf("save submission: %w", err)
	}
	if err := deps.Engine.MarkSubmitted(ctx, input.SessionID, sub.ID); err != nil {
		slog.Warn("mark_submitted_failed", "submission", sub.ID, "error", err.Error())
	}

	if deps.Sender != nil && sub.ManagerEmail != "" {
		body := email.BuildConfirmation(email.ConfirmationData{
			ManagerName:      sub.ManagerName,
			EventName:        ev.Name,
			EventVenue:       ev.Venue,
			EventDescription: ev.Description,
			Payloads:         payloads,
			TeamNames:        teamNames,
		})
		msg := email.Message{
			To:      sub.ManagerEmail,
			Subject: fmt.Sprintf("Registration received: %s", ev.Name),
			HTML:    body,
			ReplyTo: deps.ReplyTo,
		}
		if err := deps.Sender.Send(ctx, msg); err != nil {
			slog.Warn("confirmation_email_failed", "submission", sub.ID, "error", err.Error())
		}
	}

	return SubmitRegistrationResult{SubmissionID: sub.ID, Payloads: payloads}, nil
}
