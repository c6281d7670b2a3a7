package submission

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"regatta/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new submission store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, session_id, event_id, manager_name, manager_email, payload, submitted_at"

// GetByID retrieves a Submission by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (Submission, error) {
	query := "SELECT " + columns + " FROM submission WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)
	entity, err := scanSubmission(row.Scan)
	if err == sql.ErrNoRows {
		return Submission{}, fmt.Errorf("submission not found: %w", err)
	}
	return entity, err
}

// Save persists a Submission.
// PRE: entity is fully populated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity Submission) error {
	query := `INSERT INTO submission (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			manager_name = excluded.manager_name,
			manager_email = excluded.manager_email,
			payload = excluded.payload,
			submitted_at = excluded.submitted_at`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.SessionID,
		entity.EventID,
		entity.ManagerName,
		entity.ManagerEmail,
		entity.Payload,
		entity.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

// ListByEvent retrieves submissions for an event, newest first.
// POST: Returns matching submissions, possibly empty
func (s *SQLiteStore) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]Submission, error) {
	query := "SELECT " + columns + " FROM submission WHERE event_id = ? ORDER BY submitted_at DESC"
	args := []any{eventID}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var entities []Submission
	for rows.Next() {
		entity, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// Count returns the number of submissions for an event.
func (s *SQLiteStore) Count(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM submission WHERE event_id = ?", eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func scanSubmission(scan func(dest ...any) error) (Submission, error) {
	var entity Submission
	var submittedAt string
	err := scan(
		&entity.ID,
		&entity.SessionID,
		&entity.EventID,
		&entity.ManagerName,
		&entity.ManagerEmail,
		&entity.Payload,
		&submittedAt,
	)
	if err != nil {
		return Submission{}, err
	}
	entity.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
	return entity, nil
}
