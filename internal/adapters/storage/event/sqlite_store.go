package event

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"regatta/internal/adapters/storage"
	domain "regatta/internal/domain/event"
)

const dateLayout = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const eventColumns = "id, name, venue, race_date, description, practice_start, practice_end, allowed_weekdays, max_dates_per_team, registration_open"

// GetByID retrieves an Event by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	query := "SELECT " + eventColumns + " FROM event WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)
	entity, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	return entity, err
}

// Save persists an Event (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	query := `INSERT INTO event (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			venue = excluded.venue,
			race_date = excluded.race_date,
			description = excluded.description,
			practice_start = excluded.practice_start,
			practice_end = excluded.practice_end,
			allowed_weekdays = excluded.allowed_weekdays,
			max_dates_per_team = excluded.max_dates_per_team,
			registration_open = excluded.registration_open`
	open := 0
	if entity.RegistrationOpen {
		open = 1
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Venue,
		entity.RaceDate.Format(dateLayout),
		entity.Description,
		entity.PracticeStart.Format(dateLayout),
		entity.PracticeEnd.Format(dateLayout),
		encodeWeekdays(entity.AllowedWeekdays),
		entity.MaxDatesPerTeam,
		open,
	)
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// Delete removes an Event by ID.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// List retrieves events ordered by race date.
// POST: Returns matching events, possibly empty
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	query := "SELECT " + eventColumns + " FROM event"
	var args []any
	if filter.OpenOnly {
		query += " WHERE registration_open = 1"
	}
	query += " ORDER BY race_date"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entities []domain.Event
	for rows.Next() {
		entity, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// Count returns the number of events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// scanEvent maps a row to the domain entity using the given scan function.
func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var entity domain.Event
	var raceDate, practiceStart, practiceEnd, weekdays string
	var open int
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Venue,
		&raceDate,
		&entity.Description,
		&practiceStart,
		&practiceEnd,
		&weekdays,
		&entity.MaxDatesPerTeam,
		&open,
	)
	if err != nil {
		return domain.Event{}, err
	}
	entity.RaceDate, _ = time.Parse(dateLayout, raceDate)
	entity.PracticeStart, _ = time.Parse(dateLayout, practiceStart)
	entity.PracticeEnd, _ = time.Parse(dateLayout, practiceEnd)
	entity.AllowedWeekdays = decodeWeekdays(weekdays)
	entity.RegistrationOpen = open == 1
	return entity, nil
}

// encodeWeekdays stores the weekday set as a comma-separated list of 0-6.
func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
