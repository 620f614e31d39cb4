package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pegada/calcpc/internal/config"
)

// NewConfigShowCmd creates the command that prints the effective configuration.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration in effect: defaults, the global file, the project
overlay, environment variables and --db, in that order of precedence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Printf("# %s\n", cfg.ConfigPath())
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration:

- engine ordering, division epsilon, sheet names, batch size and concurrency
- output precision and locale
- logging level and format`,
		Example: `  # Validate current configuration
  calcpc config validate

  # Validate and show detailed information
  calcpc config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}

func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")
	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	cmd.Printf("  Database: %s\n", cfg.Database.Path)
	cmd.Printf("  Ordering: %s\n", cfg.Engine.Ordering)
	cmd.Printf("  Reference sheet: %s (alias %s)\n", cfg.Engine.ReferenceSheet, cfg.Engine.ReferenceAlias)
	cmd.Printf("  Link source sheet: %s\n", cfg.Engine.LinkSourceSheet)
	cmd.Printf("  Sweep: batch size %d, concurrency %d\n", cfg.Engine.BatchSize, cfg.Engine.Concurrency)
	cmd.Printf("  Output: precision %d, locale %s\n", cfg.Output.Precision, cfg.Output.Locale)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
}
