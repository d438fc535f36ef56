package watcher

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrNotRunning is returned by StopDaemon when no live daemon owns the PID
// file.
var ErrNotRunning = errors.New("daemon not running")

// stopTimeout bounds how long StopDaemon waits for the daemon to exit.
var stopTimeout = 5 * time.Second

// daemonCommand builds the detached child invocation of the current binary.
func daemonCommand(executable string, args []string) *exec.Cmd {
	childArgs := append([]string{"watch", "--daemon-child"}, args...)
	cmd := exec.Command(executable, childArgs...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}

// StartDaemon re-executes the current binary as "watch --daemon-child args..."
// in a new session, appending its output to logFile and recording its PID in
// pidFile.
func (w *Watcher) StartDaemon(pidFile, logFile string, args []string) error {
	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon already running (PID file: %s)", pidFile)
	}

	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := daemonCommand(executable, args)
	cmd.Stdout = logF
	cmd.Stderr = logF
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	if err := writePIDFile(pidFile, cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return err
	}
	return cmd.Process.Release()
}

// RunDaemon is the body of the daemon child. It records its own PID, watches
// until SIGTERM or SIGINT, then removes the PID file.
func (w *Watcher) RunDaemon(pidFile string) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	if err := writePIDFile(pidFile, os.Getpid()); err != nil {
		return err
	}
	defer removePIDFile(pidFile)

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	log.Printf("watcher: daemon started (pid %d, %d directories)", os.Getpid(), len(w.dirs))

	sig := <-sigCh
	log.Printf("watcher: received %v after %d refreshes, shutting down", sig, w.Refreshes())

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	return nil
}

// StopDaemon sends SIGTERM to the daemon recorded in pidFile and waits for it
// to exit. A PID file naming a dead process is removed and ErrNotRunning
// returned.
func StopDaemon(pidFile string) error {
	pid, err := ReadPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w (PID file not found)", ErrNotRunning)
		}
		return err
	}

	if !processAlive(pid) {
		removePIDFile(pidFile)
		return fmt.Errorf("%w (stale PID %d removed)", ErrNotRunning, pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}

	deadline := time.Now().Add(stopTimeout)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("process %d did not exit within %v", pid, stopTimeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
	removePIDFile(pidFile)
	return nil
}

// ReadPID returns the PID recorded in pidFile. A missing file yields an
// error satisfying os.IsNotExist.
func ReadPID(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s: %q", pidFile, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// IsDaemonRunning reports whether pidFile names a live process. Unparseable
// and stale PID files count as not running; stale ones are removed.
func IsDaemonRunning(pidFile string) (bool, error) {
	pid, err := ReadPID(pidFile)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return false, nil
	case errors.Is(err, os.ErrPermission):
		return false, fmt.Errorf("failed to read PID file: %w", err)
	default:
		return false, nil
	}

	if !processAlive(pid) {
		removePIDFile(pidFile)
		return false, nil
	}
	return true, nil
}

// processAlive sends signal 0 to pid.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// writePIDFile replaces pidFile atomically so readers never see a partial PID.
func writePIDFile(pidFile string, pid int) error {
	tmp, err := os.CreateTemp(filepath.Dir(pidFile), filepath.Base(pidFile)+".*")
	if err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintf(tmp, "%d\n", pid); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := os.Rename(tmp.Name(), pidFile); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func removePIDFile(pidFile string) {
	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		log.Printf("watcher: failed to remove PID file %s: %v", pidFile, err)
	}
}
