package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegada/calcpc/internal/config"
	"github.com/pegada/calcpc/internal/sheet"
)

// isolate points CALCPC_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	for _, env := range []string{
		config.EnvDBPath, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvOrdering, config.EnvConcurrency, config.EnvProjectDir,
	} {
		t.Setenv(env, "")
	}
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefault(t *testing.T) {
	home := isolate(t)
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(home, "calcpc.db"), cfg.Database.Path)
	assert.Equal(t, config.OrderingInsertion, cfg.Engine.Ordering)
	assert.InDelta(t, 1e-10, cfg.Engine.DivisionEpsilon, 0)
	assert.Equal(t, sheet.Coefficients, cfg.Engine.ReferenceSheet)
	assert.Equal(t, sheet.Forms, cfg.Engine.LinkSourceSheet)
	assert.Equal(t, 6, cfg.Engine.MaxColumns)
	assert.Equal(t, "pt-BR", cfg.Output.Locale)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
}

func TestNew_MergesFileAndEnv(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.yaml"), `
engine:
  ordering: topological
output:
  precision: 3
unknown_section:
  ignored: true
`)
	t.Setenv(config.EnvDBPath, "/tmp/override.db")

	cfg := config.New()
	assert.Equal(t, config.OrderingTopological, cfg.Engine.Ordering)
	assert.Equal(t, 3, cfg.Output.Precision)
	// Keys missing from a present section keep their defaults.
	assert.Equal(t, 6, cfg.Engine.MaxColumns)
	assert.Equal(t, "pt-BR", cfg.Output.Locale)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "engine: [not, a, map")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "bad ordering", mutate: func(c *config.Config) { c.Engine.Ordering = "random" }, wantErr: "engine.ordering"},
		{name: "zero epsilon", mutate: func(c *config.Config) { c.Engine.DivisionEpsilon = 0 }, wantErr: "division_epsilon"},
		{name: "bad sheet", mutate: func(c *config.Config) { c.Engine.ReferenceSheet = "Insumos" }, wantErr: "reference_sheet"},
		{name: "batch size", mutate: func(c *config.Config) { c.Engine.BatchSize = 5000 }, wantErr: "batch_size"},
		{name: "precision", mutate: func(c *config.Config) { c.Output.Precision = -1 }, wantErr: "precision"},
		{name: "locale", mutate: func(c *config.Config) { c.Output.Locale = "??" }, wantErr: "locale"},
		{name: "log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "empty db", mutate: func(c *config.Config) { c.Database.Path = " " }, wantErr: "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	cfg.SetConfigPath(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	cfg.Engine.Ordering = config.OrderingTopological
	cfg.Output.Precision = 4
	require.NoError(t, cfg.Save())

	loaded, err := config.Load(cfg.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, cfg.Engine, loaded.Engine)
	assert.Equal(t, cfg.Output, loaded.Output)
	assert.Equal(t, cfg.Database, loaded.Database)
}

func TestGlobalConfig_ProjectOverlay(t *testing.T) {
	isolate(t)
	project := filepath.Join(t.TempDir(), "fazenda")
	writeFile(t, filepath.Join(project, ".calcpc", "config.yaml"), "engine:\n  concurrency: 2\n")

	dir := config.ResolveProjectDir(context.Background(), "", filepath.Join(project, "sub", "dir"))
	assert.Equal(t, filepath.Join(project, ".calcpc"), dir)

	config.SetResolvedProjectDir(dir)
	cfg := config.GetGlobalConfig()
	assert.Equal(t, 2, cfg.Engine.Concurrency)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath())
}

func TestResolveProjectDir_FlagAndEnv(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	tmp := t.TempDir()

	assert.Equal(t, filepath.Join(tmp, ".calcpc"), config.ResolveProjectDir(ctx, tmp, ""))
	assert.Equal(t, filepath.Join(tmp, ".calcpc"), config.ResolveProjectDir(ctx, filepath.Join(tmp, ".calcpc"), ""))

	t.Setenv(config.EnvProjectDir, tmp)
	assert.Equal(t, filepath.Join(tmp, ".calcpc"), config.ResolveProjectDir(ctx, "", ""))
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", out.Output)

	lc.File = "/tmp/calcpc.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, "/tmp/calcpc.log", out.File)
}
