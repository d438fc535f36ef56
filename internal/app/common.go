package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/cache"
	"github.com/blackwell-systems/applaunch/internal/config"
	"github.com/blackwell-systems/applaunch/internal/discovery"
	"github.com/blackwell-systems/applaunch/internal/icon"
	"github.com/blackwell-systems/applaunch/internal/launch"
	"github.com/blackwell-systems/applaunch/internal/niri"
	"github.com/blackwell-systems/applaunch/internal/scanner"
	"github.com/blackwell-systems/applaunch/internal/usage"
)

// appDirectories returns the directories scanned for desktop files.
var appDirectories = func() []string {
	home, _ := os.UserHomeDir()
	return cache.AppDirectories(home)
}

// newCompositor connects commands to the compositor.
var newCompositor = func(cfg *config.Config) niri.Compositor {
	return niri.NewClient(cfg.Socket, cfg.IPCTimeout)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, "", fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	if cacheDirFlag != "" {
		cfg.CacheDir = cacheDirFlag
	}
	if socketPath != "" {
		cfg.Socket = socketPath
	}
	return cfg, path, nil
}

// environment is everything a command needs to discover, rank and launch.
type environment struct {
	cfg        *config.Config
	cacheDir   string
	dirs       []string
	icons      *icon.CachedResolver
	scanner    *scanner.Scanner
	cache      *cache.Cache
	compositor niri.Compositor
}

func newEnvironment() (*environment, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	cacheDir, err := cfg.ResolveCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	home, _ := os.UserHomeDir()
	icons, err := icon.NewCached(icon.Default(home), cfg.IconCacheSize)
	if err != nil {
		return nil, err
	}

	sc := scanner.New(icons)
	sc.FallbackIcon = cfg.FallbackIcon
	sc.Verbose = verbose

	c, err := cache.New(cacheDir, sc)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:        cfg,
		cacheDir:   cacheDir,
		dirs:       appDirectories(),
		icons:      icons,
		scanner:    sc,
		cache:      c,
		compositor: newCompositor(cfg),
	}, nil
}

func (e *environment) discovery() *discovery.Service {
	return &discovery.Service{
		Desktop:    e.cache,
		Dirs:       e.dirs,
		Compositor: e.compositor,
		Icons:      e.icons,
	}
}

func (e *environment) usagePath() string {
	return filepath.Join(e.cacheDir, usage.FileName)
}

func (e *environment) loadTracker() (*usage.Tracker, error) {
	t, err := usage.Load(e.usagePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	return t, nil
}

func (e *environment) dispatcher(t *usage.Tracker) *launch.Dispatcher {
	return &launch.Dispatcher{
		Compositor: e.compositor,
		Terminal:   e.cfg.Terminal,
		Tracker:    t,
	}
}

// pidFile returns the default watch daemon PID file path
func (e *environment) pidFile() string {
	return filepath.Join(e.cacheDir, "watch.pid")
}

// logFile returns the default watch daemon log file path
func (e *environment) logFile() string {
	return filepath.Join(e.cacheDir, "watch.log")
}

// commandContext returns the command's context, or Background when the
// command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
