package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegada/calcpc/internal/cli"
	"github.com/pegada/calcpc/internal/config"
)

// TestConfigInit_Project verifies that "config init" inside a project writes
// .calcpc/config.yaml, points the database into the project and adds a
// .gitignore.
func TestConfigInit_Project(t *testing.T) {
	env := setupCLITest(t)

	stdout := mustRunCLI(t, "config", "init")
	assert.Contains(t, stdout, "Configuration initialized at")
	assert.Contains(t, stdout, "Created .gitignore")

	// CALCPC_DB_PATH would override the saved path at load time.
	t.Setenv(config.EnvDBPath, "")
	dir := filepath.Join(env.project, ".calcpc")
	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "calcpc.db"), cfg.Database.Path)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, config.GitignoreContent(), string(data))
}

// TestConfigInit_ExistingGitignorePreserved verifies that --force rewrites the
// config but never an existing .gitignore.
func TestConfigInit_ExistingGitignorePreserved(t *testing.T) {
	env := setupCLITest(t)

	dir := filepath.Join(env.project, ".calcpc")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	custom := "# minhas regras\n*.secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(custom), 0o600))
	old := "# old\noutput:\n  precision: 9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(old), 0o600))

	stdout := mustRunCLI(t, "config", "init", "--force")
	assert.NotContains(t, stdout, "Created .gitignore")

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, old, string(data))
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	env := setupCLITest(t)
	dir := filepath.Join(env.project, ".calcpc")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output: {}\n"), 0o600))

	_, _, err := runCLI(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

// TestConfigInit_GlobalFlag verifies that --global writes to CALCPC_HOME even
// inside a project.
func TestConfigInit_GlobalFlag(t *testing.T) {
	env := setupCLITest(t)

	stdout := mustRunCLI(t, "config", "init", "--global")
	assert.Contains(t, stdout, "Configuration initialized successfully")
	assert.FileExists(t, filepath.Join(env.home, "config.yaml"))
	assert.NoFileExists(t, filepath.Join(env.project, ".calcpc", "config.yaml"))
}

// TestConfigInit_OutsideProject runs the command without the root so no
// project is resolved.
func TestConfigInit_OutsideProject(t *testing.T) {
	env := setupCLITest(t)

	cmd := cli.NewConfigInitCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Configuration initialized successfully")
	assert.FileExists(t, filepath.Join(env.home, "config.yaml"))
}

func TestConfigShowAndValidate(t *testing.T) {
	env := setupCLITest(t)

	dir := filepath.Join(env.project, ".calcpc")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("engine:\n  ordering: topological\noutput:\n  precision: 3\n"), 0o600))

	stdout := mustRunCLI(t, "config", "show")
	assert.Contains(t, stdout, "ordering: topological")
	assert.Contains(t, stdout, "precision: 3")
	assert.Contains(t, stdout, env.dbPath)

	stdout = mustRunCLI(t, "config", "validate", "--verbose")
	assert.Contains(t, stdout, "Configuration is valid")
	assert.Contains(t, stdout, "Ordering: topological")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("engine:\n  ordering: random\n"), 0o600))
	_, _, err := runCLI(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.ordering")
}
