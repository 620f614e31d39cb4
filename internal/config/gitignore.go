package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// gitignoreContent keeps databases, exports and logs of a project-local
// .calcpc/ directory out of version control. The config file stays tracked.
const gitignoreContent = `# calcpc project-local data (auto-generated)
*.db
*.db-journal
*.db-wal
*.db-shm
*.xlsx
*.log
`

// GitignoreContent returns the .gitignore written by EnsureGitignore.
func GitignoreContent() string {
	return gitignoreContent
}

// EnsureGitignore writes a .gitignore into dir unless one exists. It reports
// whether a file was created and never overwrites.
func EnsureGitignore(dir string) (bool, error) {
	path := filepath.Join(dir, ".gitignore")

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking .gitignore at %s: %w", path, err)
	}

	if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, mkdirErr)
	}

	//nolint:gosec // .gitignore must be world-readable (0644).
	if writeErr := os.WriteFile(path, []byte(gitignoreContent), 0o644); writeErr != nil {
		return false, fmt.Errorf("writing .gitignore at %s: %w", path, writeErr)
	}
	return true, nil
}
