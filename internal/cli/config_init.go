package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a project (a resolved .calcpc/ directory) it writes the project
// overlay and a .gitignore; otherwise, or with --global, ~/.calcpc/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

When a project directory is given (--project-dir or CALCPC_PROJECT_DIR),
creates $PROJECT/.calcpc/config.yaml with a .gitignore that keeps databases,
exports and logs out of version control. Use --global to write the global
configuration instead.`,
		Example: `  # Create global configuration
  calcpc config init

  # Create project configuration
  calcpc config init --project-dir ./cooperativa

  # Overwrite existing configuration
  calcpc config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectDir := config.GetResolvedProjectDir()
			if projectDir != "" && !global {
				return initProjectConfig(cmd, projectDir, force)
			}
			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write the global configuration even inside a project")
	return cmd
}

// checkNotExists fails when path exists.
func checkNotExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

// initProjectConfig writes projectDir/config.yaml and a .gitignore.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")
	if !force {
		if err := checkNotExists(configPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		return fmt.Errorf("failed to create project config directory: %w", err)
	}

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(projectDir, "calcpc.db")
	cfg.SetConfigPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore for databases, exports and logs\n")
	}
	return nil
}

// initGlobalConfig writes ~/.calcpc/config.yaml.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	cfg := config.Default()
	if !force {
		if err := checkNotExists(cfg.ConfigPath()); err != nil {
			return err
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", cfg.ConfigPath())
	return nil
}
