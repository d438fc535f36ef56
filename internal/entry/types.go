// Package entry defines the launchable candidates shared by discovery,
// ranking, and launching.
package entry

import (
	"errors"
	"fmt"
	"strings"
)

// OpenType selects how an entry is opened.
type OpenType int

const (
	// Graphical entries spawn their Exec line directly.
	Graphical OpenType = iota
	// Terminal entries are run inside the configured terminal emulator.
	Terminal
	// Window entries focus an existing compositor window; Exec holds its id.
	Window
)

// String returns the lower-case name of the open type.
func (t OpenType) String() string {
	switch t {
	case Graphical:
		return "graphical"
	case Terminal:
		return "terminal"
	case Window:
		return "window"
	default:
		return fmt.Sprintf("OpenType(%d)", int(t))
	}
}

// ParseOpenType is the inverse of OpenType.String.
func ParseOpenType(s string) (OpenType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graphical":
		return Graphical, nil
	case "terminal":
		return Terminal, nil
	case "window":
		return Window, nil
	}
	return Graphical, fmt.Errorf("unknown open type %q", s)
}

// Entry is a single launchable or focusable candidate.
// Entries are plain values: consumers copy them and never mutate them in place.
type Entry struct {
	Name     string   `json:"name"`
	Exec     string   `json:"exec"`
	Icon     string   `json:"icon"`
	OpenType OpenType `json:"open_type"`
}

// Validate reports whether the entry satisfies the name and icon invariants.
func (e Entry) Validate() error {
	if e.Name == "" {
		return errors.New("entry name cannot be empty")
	}
	if e.Icon == "" {
		return fmt.Errorf("entry %q has no icon", e.Name)
	}
	return nil
}
