package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pegada/calcpc/internal/logging"
)

const projectDirName = ".calcpc"

// resolvedProjectDir holds the resolved project directory path for use
// by other config functions during the lifetime of a CLI invocation.
var (
	resolvedProjectDir   string       //nolint:gochecknoglobals // Set once at startup, read by config loaders
	resolvedProjectDirMu sync.RWMutex //nolint:gochecknoglobals // Protects resolvedProjectDir
)

// SetResolvedProjectDir stores the resolved project directory for use by other config functions.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the stored resolved project directory.
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// ResolveProjectDir determines the project-local .calcpc directory.
// It checks, in order, flagValue, $CALCPC_PROJECT_DIR and then every
// ancestor of startDir for a .calcpc/config.yaml that is not the global one.
// It returns "" when no project is found and never creates anything.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	if startDir == "" {
		return ""
	}
	globalDir, _ := GetConfigDir()
	dir := toAbsProjectDir(ctx, startDir)
	for {
		if dir != globalDir {
			if _, err := os.Stat(filepath.Join(dir, configFileName)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(filepath.Dir(dir))
		if parent == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Join(parent, projectDirName)
	}
}

// NewWithProjectDir creates a Config by loading global config then
// merging project-local config on top. If projectDir is empty, behaves
// identically to New().
func NewWithProjectDir(projectDir string) *Config {
	return NewWithProjectDirContext(context.Background(), projectDir)
}

// NewWithProjectDirContext is NewWithProjectDir logging through ctx.
func NewWithProjectDirContext(ctx context.Context, projectDir string) *Config {
	cfg := New()

	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return cfg
	}

	cfgCopy := New()
	if err := ShallowMergeYAML(cfgCopy, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return cfg
	}
	// Environment still wins over the project file.
	cfgCopy.applyEnv()
	cfgCopy.configPath = overlayPath

	return cfgCopy
}

// toAbsProjectDir converts dir to an absolute path ending in ".calcpc".
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
