package practice

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrInvalidDate     = errors.New("practice date must be a valid YYYY-MM-DD date")
	ErrInvalidDuration = errors.New("duration must be 1 or 2 hours")
	ErrInvalidHelper   = errors.New("helper must be one of NONE, S, T, ST")
	ErrDuplicateDate   = errors.New("a practice date may appear only once per team")
	ErrTooManyDates    = errors.New("team already has the maximum number of practice dates")
	ErrInvalidRank     = errors.New("rank must be between 1 and 3")
	ErrEmptySlotCode   = errors.New("slot code cannot be empty")
	ErrDuplicateSlot   = errors.New("a slot code may be chosen only once per team")
	ErrUnknownSlotCode = errors.New("slot code does not match any known time slot")
	ErrDuplicateLadder = errors.New("each rank within a ladder may be assigned only once")
)

// Helper identifies the race-club personnel requested for a practice date.
// The short codes are the wire form used in the submission payload.
const (
	HelperNone      = "NONE"
	HelperSteersman = "S"
	HelperTrainer   = "T"
	HelperBoth      = "ST"
)

// ValidHelpers lists the accepted helper codes.
var ValidHelpers = []string{HelperNone, HelperSteersman, HelperTrainer, HelperBoth}

// DateLayout is the calendar-date wire format used throughout.
const DateLayout = "2006-01-02"

// Row is one team's selection of a practice date with its attributes.
type Row struct {
	Date          string `json:"pref_date"`
	DurationHours int    `json:"duration_hours"`
	Helper        string `json:"helper"`
}

// NewRow creates a row with the default attributes for a freshly checked date.
func NewRow(date string) Row {
	return Row{Date: date, DurationHours: 1, Helper: HelperNone}
}

// Validate checks if the Row has valid data.
// PRE: Row struct is populated
// POST: Returns nil if valid, error otherwise
func (r Row) Validate() error {
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if r.DurationHours != 1 && r.DurationHours != 2 {
		return ErrInvalidDuration
	}
	if !isValidHelper(r.Helper) {
		return ErrInvalidHelper
	}
	return nil
}

// Day returns the row's date as a time value at midnight UTC.
// PRE: Date is a valid YYYY-MM-DD string
func (r Row) Day() time.Time {
	t, _ := time.Parse(DateLayout, r.Date)
	return t
}

func isValidHelper(h string) bool {
	for _, v := range ValidHelpers {
		if h == v {
			return true
		}
	}
	return false
}

// ValidateRows checks every row and the per-team date-uniqueness invariant.
// PRE: rows may be empty
// POST: Returns nil if all rows are valid and no date repeats
func ValidateRows(rows []Row) error {
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("date %q: %w", r.Date, err)
		}
		if seen[r.Date] {
			return ErrDuplicateDate
		}
		seen[r.Date] = true
	}
	return nil
}

// TotalHours sums the duration of all rows.
// INVARIANT: rows are not mutated
func TotalHours(rows []Row) int {
	total := 0
	for _, r := range rows {
		total += r.DurationHours
	}
	return total
}

// Summary is the derived view of a team's practice rows. It is computed on
// demand and never persisted separately from the rows themselves.
type Summary struct {
	TotalHours     int
	SteersmanDates int
	TrainerDates   int
}

// Summarize derives the hour and helper-role totals from a row set.
// INVARIANT: rows are not mutated
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		s.TotalHours += r.DurationHours
		if r.Helper == HelperSteersman || r.Helper == HelperBoth {
			s.SteersmanDates++
		}
		if r.Helper == HelperTrainer || r.Helper == HelperBoth {
			s.TrainerDates++
		}
	}
	return s
}

// SlotRank is a team's ranked preference for a named time slot within one
// duration ladder.
type SlotRank struct {
	Rank     int    `json:"rank"`
	Bucket   int    `json:"-"`
	SlotCode string `json:"slot_code"`
}

// TeamPayload is the per-team submission shape. It must round-trip through
// JSON storage byte-stably, so field order and names are fixed here.
type TeamPayload struct {
	TeamKey   string        `json:"team_key"`
	Dates     []Row         `json:"dates"`
	SlotRanks []PayloadRank `json:"slot_ranks"`
}

// PayloadRank is the wire form of a slot rank (the ladder is implicit in the
// slot code and not transmitted).
type PayloadRank struct {
	Rank     int    `json:"rank"`
	SlotCode string `json:"slot_code"`
}

// BuildPayload assembles the submission payload for one team. Nil slices
// normalize to empty so the serialized form is stable.
// PRE: rows and ranks have passed their validators
// POST: Returns a payload that marshals to the canonical wire shape
func BuildPayload(teamKey string, rows []Row, ranks []SlotRank) TeamPayload {
	p := TeamPayload{TeamKey: teamKey, Dates: []Row{}, SlotRanks: []PayloadRank{}}
	p.Dates = append(p.Dates, rows...)
	for _, r := range ranks {
		p.SlotRanks = append(p.SlotRanks, PayloadRank{Rank: r.Rank, SlotCode: r.SlotCode})
	}
	return p
}
