package event

import (
	"errors"
	"strings"
	"time"

	"regatta/internal/domain/practice"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("event name cannot be empty")
	ErrEmptyRaceDate = errors.New("event race date cannot be zero")
	ErrEmptyVenue    = errors.New("event venue cannot be empty")
)

// Event is one race in the series. Its practice window bounds the dates a
// registered team may book on the water.
type Event struct {
	ID               string
	Name             string
	Venue            string
	RaceDate         time.Time
	Description      string // Markdown, rendered for listings and emails
	PracticeStart    time.Time
	PracticeEnd      time.Time
	AllowedWeekdays  []time.Weekday
	MaxDatesPerTeam  int
	RegistrationOpen bool
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.RaceDate.IsZero() {
		return ErrEmptyRaceDate
	}
	if strings.TrimSpace(e.Venue) == "" {
		return ErrEmptyVenue
	}
	return e.Window().Validate()
}

// defaultMaxDates is the fallback cap for events that do not carry their
// own. Deployments override it at startup from configuration.
var defaultMaxDates = practice.DefaultMaxDatesPerTeam

// SetDefaultMaxDatesPerTeam overrides the fallback practice-date cap.
// PRE: n > 0; non-positive values are ignored
func SetDefaultMaxDatesPerTeam(n int) {
	if n > 0 {
		defaultMaxDates = n
	}
}

// Window assembles the event's practice window, applying the default date
// cap when none is configured.
// INVARIANT: Event fields are not mutated
func (e *Event) Window() practice.Window {
	maxDates := e.MaxDatesPerTeam
	if maxDates <= 0 {
		maxDates = defaultMaxDates
	}
	return practice.Window{
		StartDate:       e.PracticeStart,
		EndDate:         e.PracticeEnd,
		AllowedWeekdays: e.AllowedWeekdays,
		MaxDatesPerTeam: maxDates,
	}
}
