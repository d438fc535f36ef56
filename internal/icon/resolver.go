// Package icon maps desktop-entry icon tokens to files on disk.
//
// Resolution never fails: when nothing matches, the original token is
// returned so the presentation layer can apply its own theme lookup.
package icon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FallbackIcon is used when an entry declares no icon at all.
const FallbackIcon = "application-x-executable"

var (
	// DefaultSizes is searched largest first to avoid upscaling.
	DefaultSizes = []int{256, 128, 96, 64, 48, 32, 24, 16}

	// DefaultThemes favours the freedesktop default theme.
	DefaultThemes = []string{"hicolor", "Adwaita", "gnome"}

	// Extensions are tried in this order within every directory.
	Extensions = []string{".png", ".svg", ".xpm"}

	sizedCategories    = []string{"apps", "places", "mimetypes"}
	scalableCategories = []string{"scalable/apps", "scalable/places"}
)

// Resolver holds the search roots used by Resolve.
type Resolver struct {
	PixmapDirs []string
	BaseDirs   []string
	Themes     []string
	Sizes      []int
}

// Default returns a Resolver over the standard system and per-user icon roots.
func Default(home string) *Resolver {
	return &Resolver{
		PixmapDirs: []string{"/usr/share/pixmaps", "/usr/share/icons"},
		BaseDirs: []string{
			"/usr/share/icons",
			filepath.Join(home, ".local", "share", "icons"),
			filepath.Join(home, ".icons"),
		},
		Themes: DefaultThemes,
		Sizes:  DefaultSizes,
	}
}

var defaultResolver = Default(userHome())

// Resolve resolves name with the default resolver.
func Resolve(name string) string {
	return defaultResolver.Resolve(name)
}

// Resolve returns the best file path for name, or name itself if no file is found.
func (r *Resolver) Resolve(name string) string {
	if name == "" {
		return name
	}

	if filepath.IsAbs(name) && fileExists(name) {
		return name
	}

	// Absolute paths that no longer exist are retried by file name.
	lookup := name
	if filepath.IsAbs(name) {
		lookup = filepath.Base(name)
	}

	if strings.Contains(lookup, ".") {
		if path, ok := r.findInPixmaps(lookup); ok {
			return path
		}
	}

	if path, ok := r.findInThemes(lookup); ok {
		return path
	}

	return name
}

func (r *Resolver) findInPixmaps(file string) (string, bool) {
	for _, dir := range r.PixmapDirs {
		path := filepath.Join(dir, file)
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

func (r *Resolver) findInThemes(name string) (string, bool) {
	base := stripExtension(name)

	for _, baseDir := range r.BaseDirs {
		for _, theme := range r.Themes {
			themeDir := filepath.Join(baseDir, theme)

			for _, size := range r.Sizes {
				for _, sub := range categoryDirs(size) {
					if path, ok := findWithExtensions(filepath.Join(themeDir, sub), base); ok {
						return path, true
					}
				}
			}

			if path, ok := findWithExtensions(themeDir, base); ok {
				return path, true
			}
		}
	}

	return "", false
}

// categoryDirs lists the subdirectories checked for one size, in priority order.
func categoryDirs(size int) []string {
	dirs := make([]string, 0, len(sizedCategories)+len(scalableCategories))
	for _, c := range sizedCategories {
		dirs = append(dirs, filepath.Join(fmt.Sprintf("%dx%d", size, size), c))
	}
	return append(dirs, scalableCategories...)
}

func findWithExtensions(dir, base string) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// stripExtension removes one trailing image extension, if present.
func stripExtension(name string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
