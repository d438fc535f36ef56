package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/cache"
	"github.com/blackwell-systems/applaunch/internal/niri"
	"github.com/blackwell-systems/applaunch/internal/watcher"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues and check system health",
	Long: `Runs diagnostic checks on your applaunch setup.

Checks:
  • Config file parses
  • Application directories exist
  • Desktop entry cache is warm
  • Usage database is readable
  • niri IPC socket answers
  • Watch daemon is running`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("Running applaunch diagnostics...")
	fmt.Println()

	// Critical issues fail the command; warnings only describe a degraded setup.
	criticalIssues := 0
	warningIssues := 0

	// Check 1: Config
	_, cfgPath, err := loadConfig()
	if err != nil {
		fmt.Println("✗ Config error:", err)
		fmt.Println("  Action: Fix or remove", cfgPath)
		fmt.Println()
		fmt.Println("Found 1 critical issue(s) and 0 warning(s).")
		return fmt.Errorf("diagnostics failed")
	}
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		fmt.Println("✓ Config loaded:", cfgPath)
	} else {
		fmt.Println("✓ Using default config (no file at", cfgPath+")")
	}

	env, err := newEnvironment()
	if err != nil {
		fmt.Println("✗ Cannot prepare cache directory:", err)
		return fmt.Errorf("diagnostics failed")
	}

	// Check 2: Application directories
	existing := 0
	for _, dir := range env.dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing++
		}
	}
	if existing == 0 {
		fmt.Println("✗ No application directories found")
		fmt.Println("  Action: Install an application or create ~/.local/share/applications")
		criticalIssues++
	} else {
		fmt.Printf("✓ %d of %d application directories present\n", existing, len(env.dirs))
	}

	// Check 3: Cache state - warning only
	st := env.cache.Status(env.dirs)
	switch {
	case st.LoadError != nil:
		fmt.Println("⚠ Cache unreadable:", st.LoadError)
		fmt.Println("  Action: Run 'applaunch cache rebuild'")
		warningIssues++
	case st.State == cache.Cold:
		fmt.Println("⚠ Cache is cold; the next query rescans every directory")
		fmt.Println("  Action: Run 'applaunch cache rebuild' or 'applaunch watch --daemon'")
		warningIssues++
	default:
		fmt.Printf("✓ Cache warm (%d entries)\n", st.Entries)
	}

	// Check 4: Usage database
	tracker, err := env.loadTracker()
	if err != nil {
		fmt.Println("✗ Cannot read usage database:", err)
		criticalIssues++
	} else if tracker.Len() == 0 {
		fmt.Println("⚠ No launches recorded yet")
		fmt.Println("  This is normal for new installations")
		warningIssues++
	} else {
		fmt.Printf("✓ %d applications with usage history\n", tracker.Len())
	}

	// Check 5: Compositor - warning only, applications still list without it
	if version, err := checkCompositor(commandContext(cmd), env.compositor); err != nil {
		fmt.Println("⚠ niri IPC unavailable:", err)
		fmt.Printf("  Action: Run inside a niri session or set --socket (%s)\n", niri.SocketEnv)
		warningIssues++
	} else if version != "" {
		fmt.Printf("✓ niri IPC socket answering (niri %s)\n", version)
	} else {
		fmt.Println("✓ niri IPC socket answering")
	}

	// Check 6: Watch daemon - warning only
	running, err := watcher.IsDaemonRunning(env.pidFile())
	switch {
	case err != nil:
		fmt.Println("⚠ Failed to check daemon status:", err)
		warningIssues++
	case !running:
		fmt.Println("⚠ Watch daemon not running")
		fmt.Println("  Action: Run 'applaunch watch --daemon'")
		warningIssues++
	default:
		if pid, err := watcher.ReadPID(env.pidFile()); err == nil {
			fmt.Printf("✓ Watch daemon running (PID %d)\n", pid)
		} else {
			fmt.Println("✓ Watch daemon running")
		}
	}

	fmt.Println()
	if criticalIssues == 0 && warningIssues == 0 {
		fmt.Println("✓ All checks passed!")
		return nil
	}

	if criticalIssues > 0 {
		fmt.Printf("Found %d critical issue(s) and %d warning(s).\n", criticalIssues, warningIssues)
		return fmt.Errorf("diagnostics failed")
	}

	fmt.Printf("Found %d warning(s). applaunch works but is not fully set up.\n", warningIssues)
	return nil
}

// checkCompositor asks for the compositor version when the client supports
// it and otherwise lists windows.
func checkCompositor(ctx context.Context, c niri.Compositor) (string, error) {
	if c == nil {
		return "", niri.ErrConnection
	}
	if v, ok := c.(interface {
		Version(context.Context) (string, error)
	}); ok {
		return v.Version(ctx)
	}
	_, err := c.Windows(ctx)
	return "", err
}
