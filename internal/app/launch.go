package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/launch"
	"github.com/blackwell-systems/applaunch/internal/ranking"
)

var (
	launchDryRun bool

	launchCmd = &cobra.Command{
		Use:   "launch <text...>",
		Short: "Launch or focus the best match for a query",
		Long: `Rank candidates against the query and dispatch the best match:

  • Applications are spawned through niri
  • Terminal applications run inside the configured terminal
  • Windows are focused

Application launches are recorded so they rank higher next time. Focusing a
window is not recorded.`,
		Example: `  applaunch launch firefox
  applaunch launch --dry-run term`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLaunch,
	}

	focusCmd = &cobra.Command{
		Use:   "focus <window-id>",
		Short: "Focus a window by its niri id",
		Args:  cobra.ExactArgs(1),
		RunE:  runFocus,
	}
)

func init() {
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "print the match without launching it")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	env, err := newEnvironment()
	if err != nil {
		return err
	}

	tracker, err := env.loadTracker()
	if err != nil {
		return err
	}

	entries, err := env.discovery().Entries(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	results := ranking.Rank(entries, query, tracker)
	if len(results) == 0 {
		return fmt.Errorf("no application or window matches %q", query)
	}
	best := results[0].Entry

	if launchDryRun {
		fmt.Printf("Would %s %s (%s)\n", verb(best), best.Name, best.OpenType)
		return nil
	}

	if err := env.dispatcher(tracker).LaunchAndRecord(commandContext(cmd), best); err != nil {
		return err
	}

	if best.OpenType == entry.Window {
		fmt.Printf("✓ Focused %s\n", best.Name)
	} else {
		fmt.Printf("✓ Launched %s\n", best.Name)
	}
	return nil
}

func runFocus(cmd *cobra.Command, args []string) error {
	id, err := launch.ParseWindowID(args[0])
	if err != nil {
		return err
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}

	if err := env.compositor.FocusWindow(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to focus window %d: %w", id, err)
	}
	fmt.Printf("✓ Focused window %d\n", id)
	return nil
}

func verb(e entry.Entry) string {
	if e.OpenType == entry.Window {
		return "focus"
	}
	return "launch"
}
