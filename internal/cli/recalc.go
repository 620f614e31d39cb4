package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/config"
	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/engine/batch"
)

// recalcFlags holds the flags of the recalc command.
type recalcFlags struct {
	owner       int64
	all         bool
	sheetName   string
	concurrency int
	batchSize   int
	output      string
}

// NewRecalcCmd creates the command that recomputes every derived cell.
func NewRecalcCmd() *cobra.Command {
	var flags recalcFlags

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute derived cells",
		Long: `Recomputes every formula, conditional, lookup and link cell of a user's
sheet, or of every user with --all. Evaluation problems are reported as
warnings; the command exits with code 2 when some values could not be saved.`,
		Example: `  calcpc recalc --owner 42
  calcpc recalc --owner 42 --sheet forms_resultados
  calcpc recalc --all --concurrency 8 --batch-size 50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(flags.output); err != nil {
				return err
			}
			if flags.all == cmd.Flags().Changed("owner") {
				return errors.New("exactly one of --owner or --all is required")
			}

			e, cleanup, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sh, err := e.Sheet(sheetOrDefault(flags.sheetName))
			if err != nil {
				return err
			}
			if flags.all {
				return runRecalcAll(cmd, sh, flags)
			}
			return runRecalcOwner(cmd, sh, flags)
		},
	}

	cmd.Flags().Int64Var(&flags.owner, "owner", 0, "user id")
	cmd.Flags().BoolVar(&flags.all, "all", false, "recalculate every user of the sheet")
	cmd.Flags().StringVar(&flags.sheetName, "sheet", "", "sheet name (default: engine.link_source_sheet)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "parallel batches with --all (default: engine.concurrency)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "users per batch with --all (default: engine.batch_size)")
	cmd.Flags().StringVar(&flags.output, "output", outputTable, "output format: table or json")
	return cmd
}

func runRecalcOwner(cmd *cobra.Command, sh *engine.Sheet, flags recalcFlags) error {
	rep, err := sh.RecalculateAll(cmd.Context(), flags.owner)
	if rep == nil {
		return err
	}
	if flags.output == outputJSON {
		if jsonErr := writeJSON(cmd.OutOrStdout(), rep); jsonErr != nil {
			return jsonErr
		}
	} else {
		renderRecalcReport(cmd.OutOrStdout(), rep)
		renderWarnings(cmd.ErrOrStderr(), rep.Warnings)
	}
	if err != nil {
		return &ExitError{ExitCode: exitCodeIncomplete, Reason: err.Error()}
	}
	return nil
}

func runRecalcAll(cmd *cobra.Command, sh *engine.Sheet, flags recalcFlags) error {
	cfg := config.GetGlobalConfig()
	opts := engine.SweepOptions{
		BatchSize:   cfg.Engine.BatchSize,
		Concurrency: cfg.Engine.Concurrency,
	}
	if flags.batchSize > 0 {
		opts.BatchSize = flags.batchSize
	}
	if flags.concurrency > 0 {
		opts.Concurrency = flags.concurrency
	}

	stderr := cmd.ErrOrStderr()
	if isWriterTerminal(stderr) {
		opts.OnProgress = func(s batch.Snapshot) {
			fmt.Fprintf(stderr, "\rbatch %d/%d (%.0f%%)", s.ProcessedBatches, s.TotalBatches, s.Percent)
			if s.Complete() {
				fmt.Fprintln(stderr)
			}
		}
	}

	result, err := sh.RecalculateOwners(cmd.Context(), opts)
	if result == nil {
		return err
	}

	if flags.output == outputJSON {
		if jsonErr := writeJSON(cmd.OutOrStdout(), result.Reports); jsonErr != nil {
			return jsonErr
		}
	} else {
		for _, rep := range result.Reports {
			renderRecalcReport(cmd.OutOrStdout(), rep)
		}
		cmd.Printf("%d users recalculated\n", len(result.Reports))
	}

	if err != nil || !result.OK() {
		reason := "some values could not be saved"
		if err != nil {
			reason = err.Error()
		}
		return &ExitError{ExitCode: exitCodeIncomplete, Reason: reason}
	}
	return nil
}
