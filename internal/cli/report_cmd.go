package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/config"
	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/report"
	"github.com/pegada/calcpc/internal/template"
)

// reportFlags holds the flags of the report command.
type reportFlags struct {
	owner        int64
	templatePath string
	name         string
	xlsxPath     string
	noRecalc     bool
	output       string
}

// NewReportCmd creates the command that compares a user with the sector.
func NewReportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare a user's results with the sector",
		Long: `Builds a comparison report declared in a template file. The user's data
sheet is recalculated first, the company and sector sheets are initialized
when needed and recalculated, then each report row shows both values, the
difference and the percentage difference.`,
		Example: `  calcpc report --owner 42 --template templates/cafe.yaml
  calcpc report --owner 42 --template templates/cafe.yaml --xlsx comparativo.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, flags)
		},
	}

	cmd.Flags().Int64Var(&flags.owner, "owner", 0, "user id")
	cmd.Flags().StringVar(&flags.templatePath, "template", "", "template file declaring the report")
	cmd.Flags().StringVar(&flags.name, "name", "", "report name (default: the first report of the template)")
	cmd.Flags().StringVar(&flags.xlsxPath, "xlsx", "", "also write the report to this .xlsx file")
	cmd.Flags().BoolVar(&flags.noRecalc, "no-recalc", false, "report the stored values without recalculating")
	cmd.Flags().StringVar(&flags.output, "output", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func runReport(cmd *cobra.Command, flags reportFlags) error {
	if err := validateOutputFormat(flags.output); err != nil {
		return err
	}
	f, err := template.LoadFile(flags.templatePath)
	if err != nil {
		return err
	}
	if len(f.Reports) == 0 {
		return errors.New("template declares no reports")
	}
	def := f.Reports[0]
	if flags.name != "" {
		if def, err = report.Find(f.Reports, flags.name); err != nil {
			return err
		}
	}

	e, cleanup, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if !flags.noRecalc {
		if err := refreshReportSheets(ctx, e, def, flags.owner); err != nil {
			return err
		}
	}

	cmp, err := report.Build(ctx, e, def, flags.owner)
	if err != nil {
		return err
	}

	if flags.output == outputJSON {
		if err := writeJSON(cmd.OutOrStdout(), cmp); err != nil {
			return err
		}
	} else {
		err = report.Render(cmd.OutOrStdout(), cmp, report.RenderOptions{
			Styled:    isWriterTerminal(cmd.OutOrStdout()),
			Formatter: outputFormatter(),
			Precision: config.GetOutputPrecision(),
		})
		if err != nil {
			return err
		}
	}

	if flags.xlsxPath != "" {
		if err := report.SaveXLSX(flags.xlsxPath, cmp); err != nil {
			return err
		}
		cmd.PrintErrf("Report written to %s\n", flags.xlsxPath)
	}
	return nil
}

// refreshReportSheets recalculates the data sheet, then makes sure the
// company and sector sheets exist for owner and are current.
func refreshReportSheets(ctx context.Context, e *engine.Engine, def report.Definition, owner int64) error {
	cfg := config.GetGlobalConfig()
	for _, name := range []string{cfg.Engine.LinkSourceSheet, def.CompanySheet, def.SectorSheet} {
		sh, err := e.Sheet(name)
		if err != nil {
			return err
		}
		copied, err := sh.EnsureInitialized(ctx, owner, "")
		if err != nil {
			return err
		}
		if copied > 0 {
			continue
		}
		if _, err := sh.RecalculateAll(ctx, owner); err != nil {
			return err
		}
	}
	return nil
}
