package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegada/calcpc/internal/config"
)

func TestEnsureGitignore(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sub", ".calcpc")

	created, err := config.EnsureGitignore(dir)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, config.GitignoreContent(), string(data))
	for _, pattern := range []string{"*.db", "*.db-wal", "*.xlsx", "*.log"} {
		assert.Contains(t, string(data), pattern)
	}
	assert.NotContains(t, string(data), "config.yaml")
}

func TestEnsureGitignoreKeepsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	custom := "# mine\n*.tmp\n"
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	created, err := config.EnsureGitignore(dir)
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}
