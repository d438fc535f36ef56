package scanner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/blackwell-systems/applaunch/internal/desktop"
	"github.com/blackwell-systems/applaunch/internal/entry"
)

// Result is the outcome of scanning a set of directories.
type Result struct {
	Entries []entry.Entry
	Files   int // candidate files found
	Skipped int // candidate files that did not yield an entry
}

type job struct {
	index int
	path  string
}

type parsed struct {
	entry entry.Entry
	ok    bool
}

// ScanDirectories lists every directory in order and parses its desktop
// files in parallel. Missing or unreadable directories are skipped.
// Entries keep per-directory listing order.
//
// Files that parse but are not launchable (Hidden=true, NoDisplay=true, or a
// Type other than Application) are counted in Skipped and yield no entry, so
// N readable files can produce fewer than N entries.
func (s *Scanner) ScanDirectories(dirs []string) Result {
	paths := listCandidates(dirs)
	results := make([]parsed, len(paths))

	if len(paths) > 0 {
		jobs := make(chan job)
		var wg sync.WaitGroup
		var mu sync.Mutex
		done := 0

		for i := 0; i < s.workers(len(paths)); i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range jobs {
					e, err := s.ParseFile(j.path)
					if err != nil {
						if s.Verbose {
							log.Printf("scanner: skipping %s: %v", j.path, err)
						}
					} else {
						results[j.index] = parsed{entry: e, ok: true}
					}
					if s.Progress != nil {
						mu.Lock()
						done++
						s.Progress(done, len(paths))
						mu.Unlock()
					}
				}
			}()
		}

		for i, p := range paths {
			jobs <- job{index: i, path: p}
		}
		close(jobs)
		wg.Wait()
	}

	res := Result{Files: len(paths), Entries: make([]entry.Entry, 0, len(paths))}
	for _, r := range results {
		if !r.ok {
			res.Skipped++
			continue
		}
		res.Entries = append(res.Entries, r.entry)
	}

	if res.Skipped > 0 && !s.Verbose {
		log.Printf("scanner: skipped %d of %d desktop files", res.Skipped, res.Files)
	}

	return res
}

// ParseFile converts one desktop file into an entry.
func (s *Scanner) ParseFile(path string) (entry.Entry, error) {
	f, err := desktop.Parse(path)
	if err != nil {
		return entry.Entry{}, err
	}
	if err := f.Launchable(); err != nil {
		return entry.Entry{}, err
	}

	name := f.LocalizedName(s.Locales...)
	if name == "" {
		return entry.Entry{}, fmt.Errorf("%w: missing Name", desktop.ErrInvalidEntry)
	}

	iconName := f.Icon
	if iconName == "" {
		iconName = s.FallbackIcon
	}
	resolved := iconName
	if s.icons != nil {
		resolved = s.icons.Resolve(iconName)
	}
	if resolved == "" {
		resolved = s.FallbackIcon
	}

	openType := entry.Graphical
	if f.Terminal {
		openType = entry.Terminal
	}

	return entry.Entry{
		Name:     name,
		Exec:     f.Exec,
		Icon:     resolved,
		OpenType: openType,
	}, nil
}

// listCandidates returns desktop files from dirs, directory by directory.
func listCandidates(dirs []string) []string {
	var paths []string
	for _, dir := range dirs {
		items, err := os.ReadDir(dir)
		if err != nil {
			continue // directory does not exist on this system
		}
		for _, item := range items {
			if item.IsDir() || !desktop.IsCandidate(item.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(dir, item.Name()))
		}
	}
	return paths
}
