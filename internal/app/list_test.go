package app

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/blackwell-systems/applaunch/internal/discovery"
	"github.com/blackwell-systems/applaunch/internal/niri"
)

func TestRunList_Table(t *testing.T) {
	setupTestEnv(t)

	var err error
	out := captureStdout(t, func() {
		err = runList(listCmd, nil)
	})
	if err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	for _, want := range []string{"Firefox", "GIMP", "htop", "terminal", "Inbox - Thunderbird", "window", "4 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "untitled") {
		t.Errorf("untitled window should be skipped:\n%s", out)
	}
}

func TestRunList_JSON(t *testing.T) {
	setupTestEnv(t)
	listJSON = true

	var err error
	out := captureStdout(t, func() {
		err = runList(listCmd, nil)
	})
	if err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	var entries []entryJSON
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	last := entries[len(entries)-1]
	if last.Name != "Inbox - Thunderbird" || last.Exec != "42" || last.OpenType != "window" {
		t.Errorf("windows should follow applications, last = %+v", last)
	}
	for _, e := range entries[:3] {
		if e.OpenType == "window" {
			t.Errorf("application entry %q has open_type window", e.Name)
		}
	}
}

func TestRunList_CompositorDown(t *testing.T) {
	te := setupTestEnv(t)
	te.compositor.err = niri.ErrConnection

	var err error
	out := captureStdout(t, func() {
		err = runList(listCmd, nil)
	})
	if err != nil {
		t.Fatalf("runList() should degrade to applications, got %v", err)
	}
	if !strings.Contains(out, "Firefox") || strings.Contains(out, "Thunderbird") {
		t.Errorf("expected applications only:\n%s", out)
	}
}

func TestRunList_NoSources(t *testing.T) {
	te := setupTestEnv(t)
	te.compositor.err = niri.ErrConnection
	if err := os.RemoveAll(te.appsDir); err != nil {
		t.Fatalf("failed to remove apps dir: %v", err)
	}

	var err error
	captureStdout(t, func() {
		err = runList(listCmd, nil)
	})
	if !errors.Is(err, discovery.ErrNoSources) {
		t.Errorf("runList() error = %v, want ErrNoSources", err)
	}
	if !errors.Is(err, niri.ErrConnection) {
		t.Errorf("runList() error = %v, want it to wrap ErrConnection", err)
	}
}
