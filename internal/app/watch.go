package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/output"
	"github.com/blackwell-systems/applaunch/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Keep the desktop entry cache warm",
		Long: `Watch the application directories and rebuild the desktop entry cache as
soon as an application is installed, updated or removed, so queries never
wait on a full scan.

Bursts of changes are coalesced (watch_debounce, default 500ms): a package
manager touching hundreds of files triggers one rebuild.

By default the watcher runs until interrupted. --daemon detaches it and
records its PID next to the cache; --stop terminates that process.`,
		Example: `  applaunch watch
  applaunch watch --daemon
  applaunch watch --stop
  applaunch watch --daemon --pid-file /run/user/1000/applaunch.pid --log-file /tmp/applaunch.log`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	f := watchCmd.Flags()
	f.BoolVar(&watchDaemon, "daemon", false, "detach and run in the background")
	f.BoolVar(&watchStop, "stop", false, "stop the background watcher")
	f.StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: <cache-dir>/watch.pid)")
	f.StringVar(&watchLogFile, "log-file", "", "log file path (default: <cache-dir>/watch.log)")
	f.BoolVar(&watchDaemonChild, "daemon-child", false, "run as the detached child")
	_ = f.MarkHidden("daemon-child")
	watchCmd.MarkFlagsMutuallyExclusive("daemon", "stop")
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	if watchPIDFile == "" {
		watchPIDFile = env.pidFile()
	}
	if watchLogFile == "" {
		watchLogFile = env.logFile()
	}

	if watchStop {
		return stopWatchDaemon()
	}

	w, err := watcher.New(env.cache, env.dirs, env.cfg.WatchDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	switch {
	case watchDaemonChild:
		// Output already goes to the log file.
		return w.RunDaemon(watchPIDFile)
	case watchDaemon:
		return startWatchDaemon(w, daemonChildArgs(env.cacheDir))
	default:
		return runWatchForeground(w, len(env.dirs))
	}
}

// daemonChildArgs forwards the settings the child needs to find the same
// cache and PID file.
func daemonChildArgs(cacheDir string) []string {
	args := []string{"--cache-dir", cacheDir, "--pid-file", watchPIDFile}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if socketPath != "" {
		args = append(args, "--socket", socketPath)
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return args
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}
	pid, _ := watcher.ReadPID(watchPIDFile)

	spinner := output.NewSpinner("Stopping watcher...")
	spinner.Start()
	err = watcher.StopDaemon(watchPIDFile)
	switch {
	case errors.Is(err, watcher.ErrNotRunning):
		// Exited between the check and the signal.
		spinner.Stop()
		fmt.Println("Daemon is not running")
		return nil
	case err != nil:
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Daemon stopped (pid %d)", pid))
	return nil
}

func startWatchDaemon(w *watcher.Watcher, childArgs []string) error {
	if err := w.StartDaemon(watchPIDFile, watchLogFile, childArgs); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	pid, _ := watcher.ReadPID(watchPIDFile)
	fmt.Printf("✓ Daemon started (pid %d)\n", pid)
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Println("\nStop it with: applaunch watch --stop")
	return nil
}

func runWatchForeground(w *watcher.Watcher, dirs int) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	spinner := output.NewSpinner("Warming desktop entry cache...")
	spinner.Start()
	if err := w.Start(); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Watching %d application directories (Ctrl+C to stop)", dirs))

	sig := <-sigCh
	fmt.Printf("\n%v: shutting down\n", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Printf("✓ Watcher stopped after %d cache refreshes\n", w.Refreshes())
	return nil
}
