package cli_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pegada/calcpc/internal/cli"
	"github.com/pegada/calcpc/internal/config"
)

// coffeeTemplate is the sample template shared with the template package tests.
const coffeeTemplate = "../template/testdata/coffee.yaml"

// testEnv isolates one test from the user's home, database and project.
type testEnv struct {
	home    string
	project string
	dbPath  string
}

// setupCLITest points CALCPC_HOME, CALCPC_DB_PATH and CALCPC_PROJECT_DIR at
// temp paths and resets global state afterwards.
func setupCLITest(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		home:    t.TempDir(),
		project: t.TempDir(),
	}
	env.dbPath = filepath.Join(env.home, "data", "calcpc.db")

	t.Setenv(config.EnvHome, env.home)
	t.Setenv(config.EnvDBPath, env.dbPath)
	t.Setenv(config.EnvProjectDir, env.project)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvOrdering, "")
	t.Setenv(config.EnvConcurrency, "")
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return env
}

// runCLI executes the root command with args. Each call starts from a fresh
// global configuration, as a new process would.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetGlobalConfigForTest()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRunCLI is runCLI failing the test on error.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, args...)
	require.NoError(t, err, "calcpc %v\nstderr: %s", args, stderr)
	return stdout
}

// seedOwner loads the coffee template and fills owner 42's data sheet.
func seedOwner(t *testing.T) {
	t.Helper()
	mustRunCLI(t, "template", "load", coffeeTemplate)
	mustRunCLI(t, "sheet", "init", "--owner", "42")
	for _, in := range [][2]string{{"A1", "1000"}, {"A2", "100"}, {"B1", "2000"}, {"B4", "500"}} {
		mustRunCLI(t, "cell", "set", in[0], in[1], "--owner", "42")
	}
	mustRunCLI(t, "cell", "select", "B2", "Lenha", "--owner", "42")
}
