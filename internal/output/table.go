// Package output provides terminal output utilities for applaunch.
//
// This package includes:
//   - Table rendering for entries, ranked results, usage stats and launch history
//   - A cache status report
//   - Progress bars and spinners for rebuilds and compositor requests
//
// Tables use fixed-width columns and ANSI colors when stdout is a terminal.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/blackwell-systems/applaunch/internal/cache"
	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/ranking"
	"github.com/blackwell-systems/applaunch/internal/store"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// padColor pads text to width before coloring so escape codes do not
// break column alignment.
func padColor(color, text string, width int) string {
	return colorize(color, fmt.Sprintf("%-*s", width, text))
}

func openTypeColor(t entry.OpenType) string {
	switch t {
	case entry.Terminal:
		return colorYellow
	case entry.Window:
		return colorGray
	default:
		return colorGreen
	}
}

// RenderEntryTable renders entries in the order given.
func RenderEntryTable(entries []entry.Entry) string {
	if len(entries) == 0 {
		return "No entries found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-10s %-32s %s\n", "Name", "Type", "Exec", "Icon"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s %-32s %s\n",
			column(e.Name, 28),
			padColor(openTypeColor(e.OpenType), e.OpenType.String(), 10),
			truncate(e.Exec, 32),
			e.Icon))
	}

	return sb.String()
}

// RenderRankedTable renders ranking results, best first.
func RenderRankedTable(results []ranking.Scored) string {
	if len(results) == 0 {
		return "No matches.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-4s %-32s %-10s %-7s %-6s %s\n",
		"#", "Name", "Type", "Match", "Boost", "Score"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for i, r := range results {
		match := "-"
		if r.Matched {
			match = fmt.Sprintf("%d", r.Score)
		}
		sb.WriteString(fmt.Sprintf("%-4d %s %s %-7s %-6.2f %.2f\n",
			i+1,
			column(r.Entry.Name, 32),
			padColor(openTypeColor(r.Entry.OpenType), r.Entry.OpenType.String(), 10),
			match,
			r.Boost,
			r.Combined))
	}

	return sb.String()
}

// UsageRow is one line of the usage table.
type UsageRow struct {
	Name     string
	UseCount uint32
	LastUsed time.Time
	Boost    float64
	Pattern  string // daily, weekly, monthly, rarely
}

// RenderUsageTable renders usage rows sorted by boost, highest first.
func RenderUsageTable(rows []UsageRow) string {
	if len(rows) == 0 {
		return "No launches recorded yet.\n"
	}

	sorted := make([]UsageRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Boost != sorted[j].Boost {
			return sorted[i].Boost > sorted[j].Boost
		}
		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-6s %-16s %-6s %s\n",
		"Application", "Uses", "Last Used", "Boost", "Pattern"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, r := range sorted {
		sb.WriteString(fmt.Sprintf("%s %-6d %-16s %-6.2f %s\n",
			column(r.Name, 28),
			r.UseCount,
			formatRelativeTime(r.LastUsed),
			r.Boost,
			formatPattern(r.Pattern)))
	}

	return sb.String()
}

func formatPattern(pattern string) string {
	switch pattern {
	case "daily":
		return colorize(colorGreen, pattern)
	case "weekly":
		return colorize(colorYellow, pattern)
	default:
		return colorize(colorGray, pattern)
	}
}

// RenderHistoryTable renders launch events, newest first as given.
func RenderHistoryTable(events []*store.LaunchEvent) string {
	if len(events) == 0 {
		return "No launch history.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-28s %-10s %s\n", "When", "Application", "Type", "ID"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("%-20s %s %-10s %s\n",
			ev.LaunchedAt.Local().Format("2006-01-02 15:04:05"),
			column(ev.Name, 28),
			ev.OpenType,
			ev.ID))
	}

	return sb.String()
}

// RenderCacheStatus renders the cache report used by "cache status".
func RenderCacheStatus(st cache.Status) string {
	var sb strings.Builder

	state := colorize(colorYellow, st.State.String())
	if st.State == cache.Warm {
		state = colorize(colorGreen, st.State.String())
	}

	sb.WriteString(fmt.Sprintf("Cache:    %s\n", st.Path))
	sb.WriteString(fmt.Sprintf("State:    %s\n", state))
	sb.WriteString(fmt.Sprintf("Entries:  %d\n", st.Entries))
	sb.WriteString(fmt.Sprintf("Size:     %s\n", formatSize(st.Size)))
	if st.LoadError != nil {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", colorize(colorRed, st.LoadError.Error())))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-60s %s\n", "Directory", "Status"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, d := range st.Directories {
		var status string
		switch {
		case !d.Exists:
			status = colorize(colorGray, "missing")
		case d.Fresh:
			status = colorize(colorGreen, "fresh")
		case d.Cached.IsZero():
			status = colorize(colorYellow, "new")
		default:
			status = colorize(colorYellow, "changed")
		}
		sb.WriteString(fmt.Sprintf("%-60s %s\n", truncate(d.Path, 60), status))
	}

	return sb.String()
}

// formatSize formats bytes into human-readable format.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime formats a time as relative to now.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate shortens s to maxLen terminal cells, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// column truncates s and pads it to exactly width terminal cells.
func column(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}
