// Package discovery gathers launch candidates: cached desktop entries
// followed by the compositor's live windows.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/icon"
	"github.com/blackwell-systems/applaunch/internal/niri"
)

// ErrNoSources is returned when neither source produced any entry.
var ErrNoSources = errors.New("no entry source available")

// EntrySource yields desktop entries for a set of application directories.
type EntrySource interface {
	DesktopEntries(dirs []string) []entry.Entry
}

// IconResolver maps an icon token to a path or theme name.
type IconResolver interface {
	Resolve(name string) string
}

// Service aggregates desktop entries and windows. Any field may be nil;
// a nil source contributes nothing.
type Service struct {
	Desktop    EntrySource
	Dirs       []string
	Compositor niri.Compositor
	Icons      IconResolver
}

// DesktopEntries returns the cached application entries.
func (s *Service) DesktopEntries() []entry.Entry {
	if s.Desktop == nil {
		return nil
	}
	return s.Desktop.DesktopEntries(s.Dirs)
}

// WindowEntries lists open windows as focusable entries. Windows without a
// title or an application id are skipped.
func (s *Service) WindowEntries(ctx context.Context) ([]entry.Entry, error) {
	if s.Compositor == nil {
		return nil, fmt.Errorf("%w: no compositor configured", niri.ErrConnection)
	}

	windows, err := s.Compositor.Windows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	entries := make([]entry.Entry, 0, len(windows))
	for _, w := range windows {
		if w.Title == nil || *w.Title == "" || w.AppID == nil {
			continue
		}
		entries = append(entries, entry.Entry{
			Name:     *w.Title,
			Exec:     strconv.FormatUint(w.ID, 10),
			Icon:     s.windowIcon(*w.AppID),
			OpenType: entry.Window,
		})
	}
	return entries, nil
}

// windowIcon resolves a window's app id. An empty app id has nothing to
// resolve and gets the fallback icon, so window entries always carry one.
func (s *Service) windowIcon(appID string) string {
	if appID == "" {
		return icon.FallbackIcon
	}
	if s.Icons == nil {
		return appID
	}
	if resolved := s.Icons.Resolve(appID); resolved != "" {
		return resolved
	}
	return appID
}

// Entries returns desktop entries followed by window entries. A window
// failure is logged and the desktop entries are still returned; an error is
// reported only when there are no desktop entries either.
func (s *Service) Entries(ctx context.Context) ([]entry.Entry, error) {
	desktop := s.DesktopEntries()

	windows, err := s.WindowEntries(ctx)
	if err != nil {
		if len(desktop) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoSources, err)
		}
		log.Printf("discovery: %v", err)
		return desktop, nil
	}

	all := make([]entry.Entry, 0, len(desktop)+len(windows))
	all = append(all, desktop...)
	all = append(all, windows...)
	return all, nil
}
