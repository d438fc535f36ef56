// Package scanner builds application entries from desktop entry directories.
//
// Files are parsed independently on a fixed-size worker pool. A file that
// fails to parse is skipped and counted; it never aborts the scan.
package scanner

import (
	"runtime"

	"github.com/blackwell-systems/applaunch/internal/desktop"
	"github.com/blackwell-systems/applaunch/internal/icon"
)

// IconResolver maps an icon token to a path or theme name.
type IconResolver interface {
	Resolve(name string) string
}

// Scanner parses desktop entry directories into entries.
type Scanner struct {
	icons IconResolver

	// Workers is the pool size; values below 1 mean runtime.NumCPU().
	Workers int
	// Locales selects localized display names, most specific first.
	Locales []string
	// FallbackIcon replaces a missing Icon key.
	FallbackIcon string
	// Verbose logs every skipped file instead of only the count.
	Verbose bool
	// Progress, when set, is called after each file with the number of
	// files handled so far. Calls may come from any worker goroutine.
	Progress func(done, total int)
}

// New creates a Scanner that resolves icons with icons.
func New(icons IconResolver) *Scanner {
	return &Scanner{
		icons:        icons,
		Locales:      desktop.Locales(),
		FallbackIcon: icon.FallbackIcon,
	}
}

func (s *Scanner) workers(jobs int) int {
	n := s.Workers
	if n < 1 {
		n = runtime.NumCPU()
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}
