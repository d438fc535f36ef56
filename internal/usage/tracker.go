// Package usage tracks application launches and turns them into a ranking
// boost that favours recently and frequently used applications.
package usage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/blackwell-systems/applaunch/internal/store"
)

// FileName is the usage database name inside the cache directory.
const FileName = "usage.db"

// Stats is the usage record of one application.
type Stats struct {
	LastUsed uint64 // epoch seconds
	UseCount uint32
}

// Record pairs an application name with its stats.
type Record struct {
	Name string
	Stats
}

// Tracker maps application display names to usage stats. It is safe for
// concurrent use.
type Tracker struct {
	mu    sync.Mutex
	path  string
	stats map[string]Stats
	now   func() time.Time

	// reset is set when the file on disk is corrupt; the next Save moves it
	// aside instead of writing into it.
	reset bool
	// unreadable is set when the file could not be read for another reason
	// (a lock held past the busy timeout, say). Save then refuses to replace
	// the history it never saw.
	unreadable bool
}

// New returns an empty tracker persisted at path. An empty path keeps the
// tracker in memory only.
func New(path string) *Tracker {
	return &Tracker{
		path:  path,
		stats: make(map[string]Stats),
		now:   time.Now,
	}
}

// Load reads the tracker stored at path. A missing file yields an empty
// tracker. An unreadable or corrupt database is logged and also yields an
// empty tracker; only unexpected filesystem errors are returned.
func Load(path string) (*Tracker, error) {
	t := New(path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("%w: stat %s: %v", store.ErrStorage, path, err)
	}

	records, err := readRecords(path)
	if err != nil {
		if store.IsCorrupt(err) {
			log.Printf("usage: corrupt usage file, starting fresh: %v", err)
			t.reset = true
		} else {
			log.Printf("usage: usage file unreadable, leaving it in place: %v", err)
			t.unreadable = true
		}
		return t, nil
	}

	for _, r := range records {
		t.stats[r.Name] = Stats{LastUsed: r.LastUsed, UseCount: r.UseCount}
	}
	return t, nil
}

func readRecords(path string) ([]store.UsageRecord, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ListUsage()
}

// SetClock replaces the time source. Used by tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Path returns the database location.
func (t *Tracker) Path() string {
	return t.path
}

// RecordLaunch counts one launch of name at the current time.
func (t *Tracker) RecordLaunch(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats[name]
	if s.UseCount < ^uint32(0) {
		s.UseCount++
	}
	s.LastUsed = unixSeconds(t.now())
	t.stats[name] = s
}

// CalculateBoost returns the usage boost for name in [0, 1]. Unknown names
// score zero.
func (t *Tracker) CalculateBoost(name string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[name]
	if !ok {
		return 0
	}
	return Boost(s, t.now())
}

// Stats returns the record for name.
func (t *Tracker) Stats(name string) (Stats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stats[name]
	return s, ok
}

// All returns every record ordered by name.
func (t *Tracker) All() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]Record, 0, len(t.stats))
	for name, s := range t.stats {
		records = append(records, Record{Name: name, Stats: s})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records
}

// Len returns the number of tracked applications.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stats)
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now()
}

// Forget drops the record for name from memory. It reports whether a
// record existed. Call Save to persist the removal.
func (t *Tracker) Forget(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stats[name]
	delete(t.stats, name)
	return ok
}

// Save writes the full state, creating parent directories as needed.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path == "" {
		return nil
	}
	if t.unreadable {
		return fmt.Errorf("%w: %s was unreadable at load, not overwriting it", store.ErrStorage, t.path)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", store.ErrStorage, err)
	}

	if t.reset {
		if err := moveAside(t.path); err != nil {
			return err
		}
		t.reset = false
	}

	records := make([]store.UsageRecord, 0, len(t.stats))
	for name, s := range t.stats {
		records = append(records, store.UsageRecord{Name: name, LastUsed: s.LastUsed, UseCount: s.UseCount})
	}

	return t.withStore(func(s *store.Store) error {
		return s.ReplaceUsage(records)
	})
}

// LogLaunch appends a launch-history event for name.
func (t *Tracker) LogLaunch(name, openType string) error {
	if t.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", store.ErrStorage, err)
	}
	at := t.Now()
	return t.withStore(func(s *store.Store) error {
		_, err := s.InsertLaunchEvent(&store.LaunchEvent{Name: name, OpenType: openType, LaunchedAt: at})
		return err
	})
}

// ForgetHistory removes the persisted record and launch history for name.
func (t *Tracker) ForgetHistory(name string) error {
	if t.path == "" {
		return nil
	}
	if _, err := os.Stat(t.path); os.IsNotExist(err) {
		return nil
	}
	return t.withStore(func(s *store.Store) error {
		return s.DeleteUsage(name)
	})
}

// History returns launch events for name (all applications when empty),
// newest first. A missing database has no history.
func (t *Tracker) History(name string, limit int) ([]*store.LaunchEvent, error) {
	if t.path == "" {
		return nil, nil
	}
	if _, err := os.Stat(t.path); os.IsNotExist(err) {
		return nil, nil
	}
	var events []*store.LaunchEvent
	err := t.withStore(func(s *store.Store) error {
		var err error
		events, err = s.ListLaunchEvents(name, limit)
		return err
	})
	return events, err
}

// HistorySummary returns the number of logged launches and the time of the
// first one. A missing database has no history.
func (t *Tracker) HistorySummary() (int, time.Time, error) {
	if t.path == "" {
		return 0, time.Time{}, nil
	}
	if _, err := os.Stat(t.path); os.IsNotExist(err) {
		return 0, time.Time{}, nil
	}

	var count int
	var first time.Time
	err := t.withStore(func(s *store.Store) error {
		var err error
		if count, err = s.GetEventCount(); err != nil {
			return err
		}
		first, err = s.GetFirstEventTime()
		return err
	})
	return count, first, err
}

func (t *Tracker) withStore(fn func(*store.Store) error) error {
	s, err := store.Open(t.path)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", store.ErrStorage, err)
	}
	return nil
}

// moveAside renames an unreadable database so a fresh one can be written.
func moveAside(path string) error {
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %v", store.ErrStorage, path+suffix, err)
		}
	}
	if err := os.Rename(path, path+".corrupt"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: move aside %s: %v", store.ErrStorage, path, err)
	}
	log.Printf("usage: moved unreadable usage file to %s.corrupt", path)
	return nil
}

func unixSeconds(t time.Time) uint64 {
	if s := t.Unix(); s > 0 {
		return uint64(s)
	}
	return 0
}
