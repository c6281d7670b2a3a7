package practice

import (
	"errors"
	"time"
)

// Window errors
var (
	ErrEmptyWindowStart  = errors.New("practice window start date cannot be zero")
	ErrEmptyWindowEnd    = errors.New("practice window end date cannot be zero")
	ErrWindowInverted    = errors.New("practice window start must be before or equal to end")
	ErrNoAllowedWeekdays = errors.New("practice window must allow at least one weekday")
	ErrInvalidDateCap    = errors.New("max dates per team must be positive")
)

// DefaultMaxDatesPerTeam applies when an event does not configure its own cap.
const DefaultMaxDatesPerTeam = 3

// Window is the configured range and weekday set within which practice dates
// may be selected. It is immutable for the duration of a session.
type Window struct {
	StartDate       time.Time
	EndDate         time.Time
	AllowedWeekdays []time.Weekday
	MaxDatesPerTeam int
}

// Validate checks if the Window has valid data.
// PRE: Window struct is populated
// POST: Returns nil if valid, error otherwise
func (w Window) Validate() error {
	if w.StartDate.IsZero() {
		return ErrEmptyWindowStart
	}
	if w.EndDate.IsZero() {
		return ErrEmptyWindowEnd
	}
	if w.StartDate.After(w.EndDate) {
		return ErrWindowInverted
	}
	if len(w.AllowedWeekdays) == 0 {
		return ErrNoAllowedWeekdays
	}
	if w.MaxDatesPerTeam <= 0 {
		return ErrInvalidDateCap
	}
	return nil
}

// Contains returns true if the given date falls within the window range.
// INVARIANT: Window fields are not mutated
func (w Window) Contains(date time.Time) bool {
	d := truncateDay(date)
	start := truncateDay(w.StartDate)
	end := truncateDay(w.EndDate)
	return !d.Before(start) && !d.After(end)
}

// AllowsWeekday returns true if the date's weekday is in the allowed set.
func (w Window) AllowsWeekday(date time.Time) bool {
	for _, wd := range w.AllowedWeekdays {
		if date.Weekday() == wd {
			return true
		}
	}
	return false
}

// Available reports whether a date can be selected: not in the past relative
// to today, inside the window, and on an allowed weekday.
// PRE: today is the reference date for "past"
func (w Window) Available(date, today time.Time) bool {
	d := truncateDay(date)
	if d.Before(truncateDay(today)) {
		return false
	}
	return w.Contains(d) && w.AllowsWeekday(d)
}

// FilterRows returns the rows whose dates still qualify under the window
// bounds and weekday set. Rows that no longer qualify are dropped, not
// reported. Past dates are kept: an already-booked date does not expire.
// INVARIANT: the input slice is not mutated
func (w Window) FilterRows(rows []Row) []Row {
	var kept []Row
	for _, r := range rows {
		d, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			continue
		}
		if w.Contains(d) && w.AllowsWeekday(d) {
			kept = append(kept, r)
		}
	}
	return kept
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
