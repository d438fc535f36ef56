package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/applaunch/internal/cache"
)

func TestCacheCommand_Subcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range cacheCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range []string{"status", "rebuild", "clear"} {
		if !found[name] {
			t.Errorf("cache subcommand %s not registered", name)
		}
	}
}

func TestCacheLifecycle(t *testing.T) {
	te := setupTestEnv(t)
	cacheFile := filepath.Join(te.cacheDir, cache.FileName)

	out := captureStdout(t, func() {
		if err := runCacheStatus(cacheStatusCmd, nil); err != nil {
			t.Fatalf("runCacheStatus() error = %v", err)
		}
	})
	if !strings.Contains(out, "cold") || !strings.Contains(out, "new") {
		t.Errorf("fresh cache should be cold with a new directory:\n%s", out)
	}

	out = captureStdout(t, func() {
		if err := runCacheRebuild(cacheRebuildCmd, nil); err != nil {
			t.Fatalf("runCacheRebuild() error = %v", err)
		}
	})
	if !strings.Contains(out, "Cache rebuilt: 3 entries") {
		t.Errorf("rebuild output = %q", out)
	}
	if _, err := os.Stat(cacheFile); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	out = captureStdout(t, func() {
		if err := runCacheStatus(cacheStatusCmd, nil); err != nil {
			t.Fatalf("runCacheStatus() error = %v", err)
		}
	})
	if !strings.Contains(out, "warm") || !strings.Contains(out, "fresh") {
		t.Errorf("rebuilt cache should be warm:\n%s", out)
	}

	out = captureStdout(t, func() {
		if err := runCacheClear(cacheClearCmd, nil); err != nil {
			t.Fatalf("runCacheClear() error = %v", err)
		}
	})
	if !strings.Contains(out, "Cache cleared") {
		t.Errorf("clear output = %q", out)
	}
	if _, err := os.Stat(cacheFile); !os.IsNotExist(err) {
		t.Errorf("cache file still present after clear: %v", err)
	}
}

func TestCacheRebuild_SkipsHiddenEntries(t *testing.T) {
	te := setupTestEnv(t)
	writeDesktopFile(t, te.appsDir, "hidden.desktop", "[Desktop Entry]\nType=Application\nName=Hidden\nExec=hidden\nNoDisplay=true\n")
	writeDesktopFile(t, te.appsDir, "broken.desktop", "not a desktop file\n")

	out := captureStdout(t, func() {
		if err := runCacheRebuild(cacheRebuildCmd, nil); err != nil {
			t.Fatalf("runCacheRebuild() error = %v", err)
		}
	})
	if !strings.Contains(out, "Cache rebuilt: 3 entries") {
		t.Errorf("rebuild output = %q, want hidden and broken files skipped", out)
	}
}
