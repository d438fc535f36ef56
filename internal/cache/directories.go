package cache

import (
	"os"
	"path/filepath"
	"time"
)

// AppDirectories returns the canonical application directories in scan
// order: system, user-local, system Flatpak exports, user Flatpak exports.
func AppDirectories(home string) []string {
	return []string{
		"/usr/share/applications",
		filepath.Join(home, ".local", "share", "applications"),
		"/var/lib/flatpak/exports/share/applications",
		filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "applications"),
	}
}

// CollectDirectoryTimestamps records the modification time of every
// directory in dirs that exists.
func CollectDirectoryTimestamps(dirs []string) map[string]time.Time {
	stamps := make(map[string]time.Time, len(dirs))
	for _, dir := range dirs {
		mtime, err := dirModTime(dir)
		if err != nil {
			continue
		}
		stamps[dir] = mtime
	}
	return stamps
}

func dirModTime(dir string) (time.Time, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
