package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/config"
	"github.com/pegada/calcpc/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root command of the calcpc CLI and wires logging,
// configuration and every subcommand.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:           "calcpc",
		Short:         "Coffee footprint calculator",
		Long:          "calcpc: environmental footprint of coffee production, computed over formula sheets",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cwd, _ := os.Getwd()
			config.SetResolvedProjectDir(config.ResolveProjectDir(cmd.Context(), projectDir, cwd))

			cfg := config.GetGlobalConfig()
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding .calcpc/config.yaml (default: search upwards from the working directory)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config and "+config.EnvDBPath+")")

	cmd.AddCommand(
		newTemplateCmd(), newSheetCmd(), newCellCmd(),
		NewRecalcCmd(), NewListCmd(), NewReportCmd(),
		newConfigCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Seed the template sheets
  calcpc template load templates/cafe.yaml

  # Create user 42's copy of the data-entry sheet
  calcpc sheet init --owner 42

  # Enter data and choose an option
  calcpc cell set A1 1500 --owner 42
  calcpc cell select B2 Lenha --owner 42

  # Show a section
  calcpc list --owner 42 --section energia

  # Recalculate every user
  calcpc recalc --all --concurrency 8

  # Compare user 42 with the sector and export a workbook
  calcpc report --owner 42 --template templates/cafe.yaml --xlsx comparativo.xlsx`

// newTemplateCmd creates the template command group.
func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "template", Short: "Template sheet commands"}
	cmd.AddCommand(NewTemplateLoadCmd(), NewTemplateExportCmd())
	return cmd
}

// newSheetCmd creates the sheet command group.
func newSheetCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sheet", Short: "Per-user sheet commands"}
	cmd.AddCommand(NewSheetInitCmd())
	return cmd
}

// newCellCmd creates the cell command group.
func newCellCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cell", Short: "Read and edit cells"}
	cmd.AddCommand(NewCellGetCmd(), NewCellSetCmd(), NewCellSelectCmd())
	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
