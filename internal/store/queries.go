package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Usage operations

// ReplaceUsage overwrites the whole usage_stats table with records in a
// single transaction. Either every record is written or none is.
func (s *Store) ReplaceUsage(records []UsageRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM usage_stats"); err != nil {
		return fmt.Errorf("%w: failed to clear usage stats: %w", ErrStorage, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO usage_stats (name, last_used, use_count)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %w", ErrStorage, err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Name, int64(r.LastUsed), int64(r.UseCount)); err != nil {
			return fmt.Errorf("%w: failed to insert usage for %s: %w", ErrStorage, r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit usage stats: %w", ErrStorage, err)
	}
	return nil
}

// ListUsage returns all usage records ordered by name.
func (s *Store) ListUsage() ([]UsageRecord, error) {
	rows, err := s.db.Query(`
		SELECT name, last_used, use_count
		FROM usage_stats
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list usage: %w", ErrStorage, err)
	}
	defer rows.Close()

	var records []UsageRecord
	for rows.Next() {
		var r UsageRecord
		var lastUsed, useCount int64
		if err := rows.Scan(&r.Name, &lastUsed, &useCount); err != nil {
			return nil, fmt.Errorf("%w: failed to scan usage row: %w", ErrStorage, err)
		}
		if lastUsed < 0 || useCount < 1 {
			return nil, fmt.Errorf("%w: invalid usage row for %s", ErrStorage, r.Name)
		}
		r.LastUsed = uint64(lastUsed)
		r.UseCount = uint32(useCount)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating usage rows: %w", ErrStorage, err)
	}

	return records, nil
}

// DeleteUsage removes the usage record and launch history for name.
func (s *Store) DeleteUsage(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM usage_stats WHERE name = ?", name); err != nil {
		return fmt.Errorf("%w: failed to delete usage for %s: %w", ErrStorage, name, err)
	}
	if _, err := tx.Exec("DELETE FROM launch_events WHERE name = ?", name); err != nil {
		return fmt.Errorf("%w: failed to delete launch events for %s: %w", ErrStorage, name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit delete: %w", ErrStorage, err)
	}
	return nil
}

// Launch event operations

// InsertLaunchEvent records a launch, assigning a ULID when event.ID is
// empty. It returns the stored id.
func (s *Store) InsertLaunchEvent(event *LaunchEvent) (string, error) {
	if event.ID == "" {
		id, err := s.newID(event.LaunchedAt)
		if err != nil {
			return "", err
		}
		event.ID = id
	}

	_, err := s.db.Exec(`
		INSERT INTO launch_events (id, name, open_type, launched_at)
		VALUES (?, ?, ?, ?)
	`,
		event.ID,
		event.Name,
		event.OpenType,
		event.LaunchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert launch event for %s: %w", ErrStorage, event.Name, err)
	}

	return event.ID, nil
}

// ListLaunchEvents returns the launch events for name, newest first.
// An empty name lists events for every application. limit <= 0 means no limit.
func (s *Store) ListLaunchEvents(name string, limit int) ([]*LaunchEvent, error) {
	query := `
		SELECT id, name, open_type, launched_at
		FROM launch_events
		WHERE (? = '' OR name = ?)
		ORDER BY id DESC
	`
	args := []interface{}{name, name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list launch events: %w", ErrStorage, err)
	}
	defer rows.Close()

	var events []*LaunchEvent
	for rows.Next() {
		var event LaunchEvent
		var launchedAt string

		if err := rows.Scan(&event.ID, &event.Name, &event.OpenType, &launchedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan launch event row: %w", ErrStorage, err)
		}

		event.LaunchedAt, err = time.Parse(time.RFC3339, launchedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse launched_at: %w", ErrStorage, err)
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating launch events: %w", ErrStorage, err)
	}

	return events, nil
}

// GetEventCount returns the total number of launch events recorded.
func (s *Store) GetEventCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM launch_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get event count: %w", ErrStorage, err)
	}
	return count, nil
}

// GetFirstEventTime returns the time of the first launch event recorded.
// Returns zero time if no events exist.
func (s *Store) GetFirstEventTime() (time.Time, error) {
	var timestamp sql.NullString
	err := s.db.QueryRow("SELECT MIN(launched_at) FROM launch_events").Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("%w: failed to get first event time: %w", ErrStorage, err)
	}
	if !timestamp.Valid || timestamp.String == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, timestamp.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to parse timestamp: %w", ErrStorage, err)
	}

	return t, nil
}

// newID returns a ULID for t. Ids generated within the same millisecond
// are strictly increasing.
func (s *Store) newID(t time.Time) (string, error) {
	if t.IsZero() {
		t = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate event id: %w", ErrStorage, err)
	}
	return id.String(), nil
}

func newEntropy() *ulid.MonotonicEntropy {
	return ulid.Monotonic(rand.Reader, 0)
}
