// Package launch turns a selected entry into a compositor request.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/niri"
)

// ErrInvalidWindowID is returned for a window entry whose exec is not a
// window id.
var ErrInvalidWindowID = errors.New("invalid window id")

// DefaultTerminal runs a command string in a new terminal window.
var DefaultTerminal = []string{"ghostty", "-c"}

// Recorder persists launches. usage.Tracker implements it.
type Recorder interface {
	RecordLaunch(name string)
	Save() error
	LogLaunch(name, openType string) error
}

// Dispatcher sends launch and focus requests to the compositor.
type Dispatcher struct {
	Compositor niri.Compositor
	// Terminal is the command prefix for terminal entries; the entry's exec
	// string is appended as one argument. Empty means DefaultTerminal.
	Terminal []string
	Tracker  Recorder
}

// Launch dispatches e without recording usage. Dispatch is never retried.
func (d *Dispatcher) Launch(ctx context.Context, e entry.Entry) error {
	switch e.OpenType {
	case entry.Window:
		id, err := ParseWindowID(e.Exec)
		if err != nil {
			return err
		}
		if err := d.compositor().FocusWindow(ctx, id); err != nil {
			return fmt.Errorf("launch: focus window %d: %w", id, err)
		}
		return nil

	case entry.Terminal:
		cmd := d.TerminalCommand(e.Exec)
		if err := d.compositor().Spawn(ctx, cmd); err != nil {
			return fmt.Errorf("launch: spawn terminal for %q: %w", e.Name, err)
		}
		return nil

	case entry.Graphical:
		cmd := Command(e.Exec)
		if err := d.compositor().Spawn(ctx, cmd); err != nil {
			return fmt.Errorf("launch: spawn %q: %w", e.Name, err)
		}
		return nil

	default:
		return fmt.Errorf("launch: unknown open type %d", int(e.OpenType))
	}
}

// LaunchAndRecord dispatches e and, for applications, records the launch
// and persists usage immediately. Window focus is not usage. A failure to
// persist is logged and does not fail the launch.
func (d *Dispatcher) LaunchAndRecord(ctx context.Context, e entry.Entry) error {
	if err := d.Launch(ctx, e); err != nil {
		return err
	}
	if e.OpenType == entry.Window || d.Tracker == nil {
		return nil
	}

	d.Tracker.RecordLaunch(e.Name)
	if err := d.Tracker.Save(); err != nil {
		log.Printf("launch: failed to save usage: %v", err)
	}
	if err := d.Tracker.LogLaunch(e.Name, e.OpenType.String()); err != nil {
		log.Printf("launch: failed to log launch event: %v", err)
	}
	return nil
}

func (d *Dispatcher) compositor() niri.Compositor {
	if d.Compositor == nil {
		return unavailable{}
	}
	return d.Compositor
}

// TerminalCommand wraps exec in the terminal prefix.
func (d *Dispatcher) TerminalCommand(exec string) []string {
	prefix := d.Terminal
	if len(prefix) == 0 {
		prefix = DefaultTerminal
	}
	cmd := make([]string, 0, len(prefix)+1)
	cmd = append(cmd, prefix...)
	return append(cmd, exec)
}

// Command splits a desktop Exec value on whitespace and drops field codes
// such as %U or %f.
func Command(exec string) []string {
	fields := strings.Fields(exec)
	cmd := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.Contains(f, "%") {
			continue
		}
		cmd = append(cmd, f)
	}
	return cmd
}

// ParseWindowID parses a window entry's exec value.
func ParseWindowID(exec string) (uint64, error) {
	id, err := strconv.ParseUint(exec, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindowID, exec)
	}
	return id, nil
}

type unavailable struct{}

func (unavailable) Windows(ctx context.Context) ([]niri.Window, error) {
	return nil, fmt.Errorf("%w: no compositor configured", niri.ErrConnection)
}

func (unavailable) Spawn(ctx context.Context, command []string) error {
	return fmt.Errorf("%w: no compositor configured", niri.ErrConnection)
}

func (unavailable) FocusWindow(ctx context.Context, id uint64) error {
	return fmt.Errorf("%w: no compositor configured", niri.ErrConnection)
}
