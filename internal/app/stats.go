package app

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/output"
	"github.com/blackwell-systems/applaunch/internal/usage"
)

var (
	statsApp     string
	statsForget  string
	statsHistory int

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show launch statistics",
		Long: `Display how often and how recently each application was launched, and the
boost that usage gives it in query results.

The boost blends recency (70%) and frequency (30%):
  • Used within the last hour: full recency
  • Decays over a day, a week and a month
  • Older than a month: floor of 0.1

Use --app for one application's detail and recent launches, or --forget to
erase an application's history.`,
		Example: `  # All applications by boost
  applaunch stats

  # Detail for one application
  applaunch stats --app Firefox

  # Erase history for an application
  applaunch stats --forget "Old App"`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
)

func init() {
	statsCmd.Flags().StringVar(&statsApp, "app", "", "show detail for one application")
	statsCmd.Flags().StringVar(&statsForget, "forget", "", "erase usage and history for an application")
	statsCmd.Flags().IntVar(&statsHistory, "history", 10, "launch events shown with --app")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsApp != "" && statsForget != "" {
		return fmt.Errorf("--app and --forget cannot be used together")
	}
	if statsHistory < 0 {
		return fmt.Errorf("--history must not be negative")
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}

	tracker, err := env.loadTracker()
	if err != nil {
		return err
	}

	switch {
	case statsForget != "":
		return forgetApp(tracker, statsForget)
	case statsApp != "":
		return showAppStats(tracker, statsApp)
	default:
		return showAllStats(tracker)
	}
}

func showAllStats(tracker *usage.Tracker) error {
	now := tracker.Now()
	records := tracker.All()

	rows := make([]output.UsageRow, len(records))
	var launches uint64
	for i, r := range records {
		rows[i] = usageRow(r, now)
		launches += uint64(r.UseCount)
	}

	fmt.Print(output.RenderUsageTable(rows))
	if len(rows) == 0 {
		return nil
	}
	fmt.Printf("\n%d applications, %d launches recorded\n", len(rows), launches)

	count, first, err := tracker.HistorySummary()
	if err != nil {
		log.Printf("stats: failed to read launch history: %v", err)
		return nil
	}
	if count > 0 {
		fmt.Printf("Launch history: %d events since %s\n", count, first.Local().Format("2006-01-02"))
	}
	return nil
}

func showAppStats(tracker *usage.Tracker, name string) error {
	s, ok := tracker.Stats(name)
	if !ok {
		fmt.Printf("No launches recorded for %s\n", name)
		return nil
	}

	now := tracker.Now()
	row := usageRow(usage.Record{Name: name, Stats: s}, now)

	fmt.Printf("Application: %s\n", name)
	fmt.Printf("Launches:    %d\n", s.UseCount)
	fmt.Printf("Last used:   %s\n", row.LastUsed.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Pattern:     %s\n", row.Pattern)
	fmt.Printf("Recency:     %.2f\n", usage.Recency(s.Age(now)))
	fmt.Printf("Frequency:   %.2f\n", usage.Frequency(s.UseCount))
	fmt.Printf("Boost:       %.2f\n", row.Boost)

	if statsHistory == 0 {
		return nil
	}
	events, err := tracker.History(name, statsHistory)
	if err != nil {
		return fmt.Errorf("failed to read launch history: %w", err)
	}
	fmt.Println()
	fmt.Print(output.RenderHistoryTable(events))
	return nil
}

func forgetApp(tracker *usage.Tracker, name string) error {
	if !tracker.Forget(name) {
		fmt.Printf("No launches recorded for %s\n", name)
		return nil
	}
	if err := tracker.Save(); err != nil {
		return fmt.Errorf("failed to save usage: %w", err)
	}
	if err := tracker.ForgetHistory(name); err != nil {
		return fmt.Errorf("failed to erase launch history: %w", err)
	}
	fmt.Printf("✓ Forgot %s\n", name)
	return nil
}

func usageRow(r usage.Record, now time.Time) output.UsageRow {
	return output.UsageRow{
		Name:     r.Name,
		UseCount: r.UseCount,
		LastUsed: time.Unix(int64(r.LastUsed), 0),
		Boost:    usage.Boost(r.Stats, now),
		Pattern:  usage.Classify(r.Stats, now),
	}
}
