package cache

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/scanner"
)

// Scanner rebuilds entries from application directories.
type Scanner interface {
	ScanDirectories(dirs []string) scanner.Result
}

// State is Warm when a valid snapshot exists and Cold otherwise.
type State int

const (
	Cold State = iota
	Warm
)

func (s State) String() string {
	if s == Warm {
		return "warm"
	}
	return "cold"
}

// DesktopEntries returns the cached entries when the snapshot is valid for
// dirs, and otherwise rebuilds, saves, and returns fresh entries. It never
// fails: load and save problems are logged and treated as a cache miss.
func (c *Cache) DesktopEntries(dirs []string) []entry.Entry {
	data, err := c.Load()
	if err != nil {
		log.Printf("cache: load failed, rebuilding: %v", err)
		data = NewCacheData()
	}

	if c.IsValid(data, dirs) {
		return data.Entries
	}

	entries, err := c.Rebuild(dirs)
	if err != nil {
		log.Printf("cache: %v", err)
	}
	return entries
}

// Rebuild scans dirs unconditionally and saves the result. The returned
// entries are valid even when the error (a save failure) is non-nil.
func (c *Cache) Rebuild(dirs []string) ([]entry.Entry, error) {
	if c.scanner == nil {
		return nil, fmt.Errorf("cache has no scanner")
	}

	// Timestamps are taken before scanning so a change made during the scan
	// invalidates the snapshot on the next call.
	stamps := CollectDirectoryTimestamps(dirs)
	res := c.scanner.ScanDirectories(dirs)

	data := &CacheData{
		Entries:             res.Entries,
		DirectoryTimestamps: stamps,
	}
	if err := c.Save(data); err != nil {
		return res.Entries, fmt.Errorf("failed to save cache: %w", err)
	}
	return res.Entries, nil
}

// DirStatus describes one application directory relative to the snapshot.
type DirStatus struct {
	Path    string
	Exists  bool
	Cached  time.Time
	Current time.Time
	Fresh   bool
}

// Status summarises the cache file for diagnostics.
type Status struct {
	Path        string
	State       State
	Entries     int
	Size        int64
	Directories []DirStatus
	LoadError   error
}

// Status inspects the cache without rebuilding it.
func (c *Cache) Status(dirs []string) Status {
	st := Status{Path: c.path}

	if info, err := os.Stat(c.path); err == nil {
		st.Size = info.Size()
	}

	data, err := c.Load()
	if err != nil {
		st.LoadError = err
		data = NewCacheData()
	}
	st.Entries = len(data.Entries)
	if c.IsValid(data, dirs) {
		st.State = Warm
	}

	for _, dir := range dirs {
		ds := DirStatus{Path: dir, Cached: data.DirectoryTimestamps[dir]}
		if mtime, err := dirModTime(dir); err == nil {
			ds.Exists = true
			ds.Current = mtime
			ds.Fresh = !ds.Cached.IsZero() && ds.Cached.Equal(mtime)
		}
		st.Directories = append(st.Directories, ds)
	}

	return st
}
