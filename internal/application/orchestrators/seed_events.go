package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	eventStore "regatta/internal/adapters/storage/event"
	"regatta/internal/domain/event"
)

// SeedEventsDeps holds dependencies for SeedEvents.
type SeedEventsDeps struct {
	EventStore eventStore.Store
}

// seedEvent is one race in the default series calendar.
type seedEvent struct {
	name        string
	venue       string
	raceDate    string
	startOffset int // days before race the practice window opens
	endOffset   int // days before race the practice window closes
	weekdays    []time.Weekday
	description string
}

var defaultSeries = []seedEvent{
	{
		name:        "Harbour Festival Regatta",
		venue:       "Viaduct Harbour",
		raceDate:    "2026-03-14",
		startOffset: 60,
		endOffset:   7,
		weekdays:    []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		description: "The season opener. Twenty-boat heats over 250m.\n\n**Marshalling** opens at 7:00.",
	},
	{
		name:        "Lakes Sprint Cup",
		venue:       "Lake Karapiro",
		raceDate:    "2026-04-18",
		startOffset: 45,
		endOffset:   5,
		weekdays:    []time.Weekday{time.Tuesday, time.Thursday, time.Saturday},
		description: "Flat-water sprints, 200m and 500m courses.",
	},
	{
		name:        "City Dragons Championship",
		venue:       "Wellington Waterfront",
		raceDate:    "2026-05-23",
		startOffset: 50,
		endOffset:   7,
		weekdays:    []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Sunday},
		description: "Championship finals. Qualification via series points.",
	},
}

// ExecuteSeedEvents inserts the default race series when the event table is
// empty. Idempotent: a non-empty table is left untouched.
// POST: at least one open event exists
func ExecuteSeedEvents(ctx context.Context, deps SeedEventsDeps) error {
	count, err := deps.EventStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, se := range defaultSeries {
		raceDate, err := time.Parse("2006-01-02", se.raceDate)
		if err != nil {
			return err
		}
		ev := event.Event{
			ID:               uuid.New().String(),
			Name:             se.name,
			Venue:            se.venue,
			RaceDate:         raceDate,
			Description:      se.description,
			PracticeStart:    raceDate.AddDate(0, 0, -se.startOffset),
			PracticeEnd:      raceDate.AddDate(0, 0, -se.endOffset),
			AllowedWeekdays:  se.weekdays,
			RegistrationOpen: true,
		}
		if err := ev.Validate(); err != nil {
			return err
		}
		if err := deps.EventStore.Save(ctx, ev); err != nil {
			return err
		}
	}
	slog.Info("events_seeded", "count", len(defaultSeries))
	return nil
}
