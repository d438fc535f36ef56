// Package store persists launch usage in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrStorage wraps every failure reading or writing the usage database.
var ErrStorage = errors.New("usage storage error")

// IsCorrupt reports whether err shows the database file itself is damaged
// or not a SQLite database, as opposed to a transient failure such as a
// lock held past the busy timeout.
func IsCorrupt(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// memoryDSN opens a private in-memory database, used by tests.
const memoryDSN = ":memory:"

// Store is the usage database: aggregated per-application stats plus the
// launch history. Safe for use by one process at a time; concurrent CLI
// invocations wait on SQLite's busy timeout.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// dsn applies the connection pragmas to every pooled connection.
func dsn(dbPath string) string {
	if dbPath == memoryDSN {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// New opens dbPath without touching the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, dbPath, err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, dbPath, err)
	}
	return &Store{db: db, entropy: newEntropy()}, nil
}

// Open opens dbPath and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSchema creates the tables and indexes if they do not exist.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrStorage, err)
	}
	return nil
}
