package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/output"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or rebuild the desktop entry cache",
		Long: `The desktop entry cache holds every parsed application together with the
modification time of each application directory. It is reused until one of
those directories changes.`,
	}

	cacheStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show whether the cache is warm and which directories changed",
		Args:  cobra.NoArgs,
		RunE:  runCacheStatus,
	}

	cacheRebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Rescan every application directory and rewrite the cache",
		Args:  cobra.NoArgs,
		RunE:  runCacheRebuild,
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheRebuildCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderCacheStatus(env.cache.Status(env.dirs)))
	return nil
}

func runCacheRebuild(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	progress := output.NewProgress(0, "Parsing desktop files")
	env.scanner.Progress = progress.Update

	entries, err := env.cache.Rebuild(env.dirs)
	progress.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Cache rebuilt: %d entries\n", len(entries))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	if err := env.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("✓ Cache cleared")
	return nil
}
