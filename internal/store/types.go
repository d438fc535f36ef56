package store

import "time"

// UsageRecord is the persisted usage of one application, keyed by display name.
type UsageRecord struct {
	Name     string
	LastUsed uint64 // epoch seconds
	UseCount uint32
}

// LaunchEvent records a single dispatched launch.
type LaunchEvent struct {
	ID         string // ULID, assigned on insert when empty
	Name       string
	OpenType   string // "graphical", "terminal" or "window"
	LaunchedAt time.Time
}
