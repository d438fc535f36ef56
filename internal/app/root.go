// Package app implements the applaunch command tree.
package app

import (
	"github.com/spf13/cobra"
)

var (
	configPath   string
	cacheDirFlag string
	socketPath   string
	verbose      bool

	// RootCmd is the root command for applaunch
	RootCmd = &cobra.Command{
		Use:   "applaunch",
		Short: "Application launcher engine for the niri compositor",
		Long: `applaunch discovers installed applications and open windows, ranks them
against a query using fuzzy matching blended with your launch history, and
launches or focuses the best match through the niri IPC socket.

Desktop files are parsed once and cached; the cache is rebuilt only when an
application directory changes. Run 'applaunch watch --daemon' to rebuild in
the background so queries never wait on a scan.

Examples:
  # List every application and window
  applaunch list

  # Show ranked matches
  applaunch query fire

  # Launch the best match and remember it
  applaunch launch firefox

  # Show what you launch most
  applaunch stats

  # Keep the cache warm in the background
  applaunch watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/applaunch/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "cache directory (default: ~/.cache/applaunch)")
	RootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "niri IPC socket (default: $NIRI_SOCKET)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every skipped desktop file")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(launchCmd)
	RootCmd.AddCommand(focusCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(cacheCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(iconCmd)
	RootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
