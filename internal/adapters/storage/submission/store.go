package submission

import (
	"context"
	"time"
)

// Submission is a completed registration: the manager identity plus the
// serialized per-team payload exactly as produced by the wizard.
type Submission struct {
	ID           string
	SessionID    string
	EventID      string
	ManagerName  string
	ManagerEmail string
	Payload      string // JSON array of per-team payloads
	SubmittedAt  time.Time
}

// Store persists Submission state.
type Store interface {
	GetByID(ctx context.Context, id string) (Submission, error)
	Save(ctx context.Context, value Submission) error
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]Submission, error)
	Count(ctx context.Context, eventID string) (int, error)
}
