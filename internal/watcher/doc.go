// Package watcher keeps the desktop entry cache warm between launches.
//
// A Watcher subscribes to the XDG application directories through fsnotify.
// Edits to *.desktop files are coalesced: the cache is asked for its entries
// only after the directories have been quiet for the debounce period, which
// rebuilds and saves it if any directory's mtime moved. Application
// directories that do not exist yet are tracked through their parent
// directory and added once they appear.
//
// The watch command runs a Watcher in the foreground or detached, in which
// case StartDaemon re-executes the binary and RunDaemon serves until SIGTERM:
//
//	w, err := watcher.New(c, dirs, 500*time.Millisecond)
//	if err != nil {
//		return err
//	}
//	return w.StartDaemon(pidFile, logFile, []string{"--cache-dir", cacheDir})
package watcher
