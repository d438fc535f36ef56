// Package cache persists parsed desktop entries between runs and decides,
// from directory modification times, when they must be rebuilt.
package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/applaunch/internal/entry"
)

// ErrStorage wraps failures reading, decoding, or writing the cache file.
var ErrStorage = errors.New("cache storage error")

// FileName is the cache file name inside the cache directory.
const FileName = "entries.cache"

// CacheData is the persisted snapshot: the entry set plus the modification
// time of every application directory at the moment it was built.
type CacheData struct {
	Entries             []entry.Entry
	DirectoryTimestamps map[string]time.Time
}

// NewCacheData returns an empty snapshot.
func NewCacheData() *CacheData {
	return &CacheData{DirectoryTimestamps: make(map[string]time.Time)}
}

// Cache owns the cache file.
type Cache struct {
	path    string
	scanner Scanner
}

// New creates a Cache stored in dir, creating dir if needed.
func New(dir string, sc Scanner) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{path: filepath.Join(dir, FileName), scanner: sc}, nil
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the cache file. A missing file yields an empty snapshot.
func (c *Cache) Load() (*CacheData, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCacheData(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, c.path, err)
	}
	data, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStorage, c.path, err)
	}
	return data, nil
}

// Save replaces the cache file atomically via a temp file and rename.
func (c *Cache) Save(data *CacheData) error {
	raw, err := Encode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".entries-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename cache file: %v", ErrStorage, err)
	}
	return nil
}

// Clear removes the cache file. Removing a missing file is not an error.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", ErrStorage, c.path, err)
	}
	return nil
}

// IsValid reports whether data may be served for dirs: the snapshot holds at
// least one entry and every existing directory still has its recorded
// modification time.
func (c *Cache) IsValid(data *CacheData, dirs []string) bool {
	if data == nil || len(data.Entries) == 0 {
		return false
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		current, err := dirModTime(dir)
		if err != nil {
			return false
		}

		cached, ok := data.DirectoryTimestamps[dir]
		if !ok || !cached.Equal(current) {
			return false
		}
	}

	return true
}

// Encode serializes data with gob.
func Encode(data *CacheData) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("failed to encode cache: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. gob drops empty slices and maps, so both
// fields come back non-nil even for an empty snapshot.
func Decode(raw []byte) (*CacheData, error) {
	data := NewCacheData()
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode cache: %w", err)
	}
	if data.Entries == nil {
		data.Entries = []entry.Entry{}
	}
	if data.DirectoryTimestamps == nil {
		data.DirectoryTimestamps = make(map[string]time.Time)
	}
	return data, nil
}
