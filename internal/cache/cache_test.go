package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/scanner"
)

// fakeScanner returns a fixed entry list and counts invocations.
type fakeScanner struct {
	mu      sync.Mutex
	entries []entry.Entry
	calls   int
}

func (f *fakeScanner) ScanDirectories(dirs []string) scanner.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return scanner.Result{Entries: append([]entry.Entry(nil), f.entries...), Files: len(f.entries)}
}

func (f *fakeScanner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(t *testing.T, sc Scanner) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), sc)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func makeEntries(n int) []entry.Entry {
	entries := make([]entry.Entry, n)
	for i := range entries {
		entries[i] = entry.Entry{
			Name:     fmt.Sprintf("App %d", i),
			Exec:     fmt.Sprintf("app%d --flag %%U", i),
			Icon:     fmt.Sprintf("/usr/share/icons/hicolor/48x48/apps/app%d.png", i),
			OpenType: entry.OpenType(i % 2),
		}
	}
	return entries
}

func TestLoad_MissingFile(t *testing.T) {
	c := newTestCache(t, nil)

	data, err := c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(data.Entries) != 0 || len(data.DirectoryTimestamps) != 0 {
		t.Errorf("Load() = %+v, want empty snapshot", data)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	c := newTestCache(t, nil)
	if err := os.WriteFile(c.Path(), []byte("definitely not gob"), 0644); err != nil {
		t.Fatalf("failed to write corrupt cache: %v", err)
	}

	_, err := c.Load()
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 1000} {
		t.Run(fmt.Sprintf("%d entries", n), func(t *testing.T) {
			c := newTestCache(t, nil)
			want := &CacheData{
				Entries: makeEntries(n),
				DirectoryTimestamps: map[string]time.Time{
					"/usr/share/applications":           time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC),
					"/home/u/.local/share/applications": time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC),
				},
			}

			if err := c.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := c.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_EmptySnapshotIsNonNil(t *testing.T) {
	raw, err := Encode(&CacheData{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Entries == nil {
		t.Error("Decode() Entries = nil, want empty slice")
	}
	if got.DirectoryTimestamps == nil {
		t.Error("Decode() DirectoryTimestamps = nil, want empty map")
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	c := newTestCache(t, nil)
	if err := c.Save(&CacheData{Entries: makeEntries(3)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	items, err := os.ReadDir(filepath.Dir(c.Path()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(items) != 1 || items[0].Name() != FileName {
		t.Errorf("cache dir contains %v, want only %s", items, FileName)
	}
}

func TestIsValid(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "a")
	dirB := filepath.Join(root, "b")
	missing := filepath.Join(root, "missing")
	for _, d := range []string{dirA, dirB} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}
	dirs := []string{dirA, missing, dirB}
	c := newTestCache(t, nil)

	fresh := func() *CacheData {
		return &CacheData{Entries: makeEntries(2), DirectoryTimestamps: CollectDirectoryTimestamps(dirs)}
	}

	if !c.IsValid(fresh(), dirs) {
		t.Error("IsValid() = false for fresh snapshot, want true")
	}

	empty := fresh()
	empty.Entries = nil
	if c.IsValid(empty, dirs) {
		t.Error("IsValid() = true for empty snapshot, want false")
	}

	partial := fresh()
	delete(partial.DirectoryTimestamps, dirB)
	if c.IsValid(partial, dirs) {
		t.Error("IsValid() = true with directory missing from snapshot, want false")
	}

	stale := fresh()
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(dirA, later, later); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	if c.IsValid(stale, dirs) {
		t.Error("IsValid() = true after directory changed, want false")
	}

	if c.IsValid(nil, dirs) {
		t.Error("IsValid(nil) = true, want false")
	}
}

func TestIsValid_NewDirectoryAppears(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "a")
	dirB := filepath.Join(root, "b")
	if err := os.MkdirAll(dirA, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	dirs := []string{dirA, dirB}
	c := newTestCache(t, nil)
	data := &CacheData{Entries: makeEntries(1), DirectoryTimestamps: CollectDirectoryTimestamps(dirs)}

	if err := os.MkdirAll(dirB, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if c.IsValid(data, dirs) {
		t.Error("IsValid() = true after a new directory appeared, want false")
	}
}

func TestDesktopEntries_ColdThenWarm(t *testing.T) {
	appDir := t.TempDir()
	dirs := []string{appDir}
	sc := &fakeScanner{entries: makeEntries(3)}
	c := newTestCache(t, sc)

	first := c.DesktopEntries(dirs)
	if len(first) != 3 || sc.Calls() != 1 {
		t.Fatalf("first call: %d entries, %d scans; want 3 entries, 1 scan", len(first), sc.Calls())
	}

	second := c.DesktopEntries(dirs)
	if sc.Calls() != 1 {
		t.Errorf("second call scanned again (calls = %d), want cache hit", sc.Calls())
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached entries differ (-first +second):\n%s", diff)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(appDir, later, later); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	c.DesktopEntries(dirs)
	if sc.Calls() != 2 {
		t.Errorf("calls after directory change = %d, want 2", sc.Calls())
	}
}

func TestDesktopEntries_EmptyResultNeverWarms(t *testing.T) {
	dirs := []string{t.TempDir()}
	sc := &fakeScanner{}
	c := newTestCache(t, sc)

	c.DesktopEntries(dirs)
	c.DesktopEntries(dirs)
	if sc.Calls() != 2 {
		t.Errorf("scans = %d, want 2 (empty snapshot is never valid)", sc.Calls())
	}
}

func TestDesktopEntries_CorruptCacheRebuilds(t *testing.T) {
	dirs := []string{t.TempDir()}
	sc := &fakeScanner{entries: makeEntries(2)}
	c := newTestCache(t, sc)
	if err := os.WriteFile(c.Path(), []byte{0x01, 0x02}, 0644); err != nil {
		t.Fatalf("failed to write corrupt cache: %v", err)
	}

	if got := c.DesktopEntries(dirs); len(got) != 2 {
		t.Errorf("len(DesktopEntries()) = %d, want 2", len(got))
	}
	if _, err := c.Load(); err != nil {
		t.Errorf("Load() after rebuild error = %v, want repaired cache", err)
	}
}

func TestDesktopEntries_SaveFailureStillReturnsEntries(t *testing.T) {
	dirs := []string{t.TempDir()}
	sc := &fakeScanner{entries: makeEntries(4)}
	c := newTestCache(t, sc)

	// Replace the cache directory with a plain file so saving fails.
	cacheDir := filepath.Dir(c.Path())
	if err := os.RemoveAll(cacheDir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if err := os.WriteFile(cacheDir, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if got := c.DesktopEntries(dirs); len(got) != 4 {
		t.Errorf("len(DesktopEntries()) = %d, want 4", len(got))
	}

	if _, err := c.Rebuild(dirs); !errors.Is(err, ErrStorage) {
		t.Errorf("Rebuild() error = %v, want ErrStorage", err)
	}
}

func TestDesktopEntries_RealScanner(t *testing.T) {
	appDir := t.TempDir()
	files := map[string]string{
		"good.desktop":  "[Desktop Entry]\nName=Good\nExec=good\n",
		"bad.desktop":   "garbage",
		"shell.desktop": "[Desktop Entry]\nName=Shell\nExec=zsh\nTerminal=true\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(appDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	sc := scanner.New(nil)
	sc.Locales = nil
	c := newTestCache(t, sc)

	got := c.DesktopEntries([]string{appDir})
	if len(got) != 2 {
		t.Fatalf("len(DesktopEntries()) = %d, want 2", len(got))
	}
}

func TestStatus(t *testing.T) {
	appDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")
	dirs := []string{appDir, missing}
	c := newTestCache(t, &fakeScanner{entries: makeEntries(5)})

	if st := c.Status(dirs); st.State != Cold || st.Entries != 0 {
		t.Errorf("Status() before build = %+v, want cold and empty", st)
	}

	c.DesktopEntries(dirs)

	st := c.Status(dirs)
	if st.State != Warm {
		t.Errorf("State = %v, want warm", st.State)
	}
	if st.Entries != 5 {
		t.Errorf("Entries = %d, want 5", st.Entries)
	}
	if st.Size == 0 {
		t.Error("Size = 0, want non-zero")
	}
	if len(st.Directories) != 2 {
		t.Fatalf("len(Directories) = %d, want 2", len(st.Directories))
	}
	if !st.Directories[0].Exists || !st.Directories[0].Fresh {
		t.Errorf("Directories[0] = %+v, want existing and fresh", st.Directories[0])
	}
	if st.Directories[1].Exists {
		t.Errorf("Directories[1] = %+v, want missing", st.Directories[1])
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t, nil)
	if err := c.Save(&CacheData{Entries: makeEntries(1)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(c.Path()); !os.IsNotExist(err) {
		t.Errorf("cache file still exists after Clear()")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on missing file error = %v, want nil", err)
	}
}

func TestAppDirectories(t *testing.T) {
	got := AppDirectories("/home/alice")
	want := []string{
		"/usr/share/applications",
		"/home/alice/.local/share/applications",
		"/var/lib/flatpak/exports/share/applications",
		"/home/alice/.local/share/flatpak/exports/share/applications",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AppDirectories() mismatch (-want +got):\n%s", diff)
	}
}
