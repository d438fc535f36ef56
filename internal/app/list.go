package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/entry"
	"github.com/blackwell-systems/applaunch/internal/output"
)

var (
	listJSON bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List applications and open windows",
		Long: `List every launch candidate: desktop applications from the cache, followed
by the windows currently open in niri.

If the compositor cannot be reached, only applications are listed.`,
		Example: `  # Table view
  applaunch list

  # Machine-readable output for a picker UI
  applaunch list --json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print entries as JSON")
}

// entryJSON is the --json representation of an entry.
type entryJSON struct {
	Name     string `json:"name"`
	Exec     string `json:"exec"`
	Icon     string `json:"icon"`
	OpenType string `json:"open_type"`
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	entries, err := env.discovery().Entries(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if listJSON {
		return printEntriesJSON(entries)
	}

	fmt.Print(output.RenderEntryTable(entries))
	if len(entries) > 0 {
		fmt.Printf("\n%d entries\n", len(entries))
	}
	return nil
}

func printEntriesJSON(entries []entry.Entry) error {
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{Name: e.Name, Exec: e.Exec, Icon: e.Icon, OpenType: e.OpenType.String()}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
