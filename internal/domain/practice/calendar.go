package practice

import (
	"time"
)

// DayCell is one selectable (or disabled) date in the rendered calendar.
type DayCell struct {
	Date      string
	Weekday   time.Weekday
	Available bool
	Checked   bool
	Row       *Row
}

// MonthBlock groups the day cells of one calendar month inside the window.
type MonthBlock struct {
	Year  int
	Month time.Month
	Days  []DayCell
}

// Months derives the month blocks spanning the window, marking each date's
// availability against today and its checked state against the team's rows.
// The calendar is rebuilt wholesale from the rows on every call, so switching
// the active team can never leak checked state between teams.
// PRE: w has been validated
// POST: Returns one block per calendar month intersecting [start, end]
func Months(w Window, today time.Time, rows []Row) []MonthBlock {
	byDate := make(map[string]*Row, len(rows))
	for i := range rows {
		byDate[rows[i].Date] = &rows[i]
	}

	start := truncateDay(w.StartDate)
	end := truncateDay(w.EndDate)

	var blocks []MonthBlock
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		block := MonthBlock{Year: cursor.Year(), Month: cursor.Month()}
		daysIn := daysInMonth(cursor.Year(), cursor.Month())
		for day := 1; day <= daysIn; day++ {
			d := time.Date(cursor.Year(), cursor.Month(), day, 0, 0, 0, 0, time.UTC)
			if d.Before(start) || d.After(end) {
				continue
			}
			iso := d.Format(DateLayout)
			cell := DayCell{
				Date:      iso,
				Weekday:   d.Weekday(),
				Available: w.Available(d, today),
			}
			if row, ok := byDate[iso]; ok {
				cell.Checked = true
				cell.Row = row
			}
			block.Days = append(block.Days, cell)
		}
		blocks = append(blocks, block)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return blocks
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CheckDate adds a row for the date with default attributes, enforcing the
// per-team cap and date uniqueness. The input slice is not mutated.
// POST: On success returns the extended row set; on cap or duplicate, the
// original set and the rejection error
func CheckDate(w Window, rows []Row, date string, today time.Time) ([]Row, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return rows, ErrInvalidDate
	}
	if !w.Available(d, today) {
		return rows, ErrInvalidDate
	}
	for _, r := range rows {
		if r.Date == date {
			return rows, ErrDuplicateDate
		}
	}
	if len(rows) >= w.MaxDatesPerTeam {
		return rows, ErrTooManyDates
	}
	out := make([]Row, 0, len(rows)+1)
	out = append(out, rows...)
	out = append(out, NewRow(date))
	return out, nil
}

// UncheckDate removes the row for the date, if present. Unchecking an
// unknown date is a no-op, not an error.
// INVARIANT: the input slice is not mutated
func UncheckDate(rows []Row, date string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Date != date {
			out = append(out, r)
		}
	}
	return out
}

// UpdateRow replaces the duration and helper of the row for the date,
// keyed by date rather than position.
// POST: Returns the updated set, or the original set and false if the
// date is not checked
func UpdateRow(rows []Row, date string, durationHours int, helper string) ([]Row, bool) {
	out := make([]Row, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].Date == date {
			out[i].DurationHours = durationHours
			out[i].Helper = helper
			return out, true
		}
	}
	return rows, false
}
