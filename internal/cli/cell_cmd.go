package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/engine"
)

// cellFlags are shared by the cell subcommands.
type cellFlags struct {
	owner     int64
	sheetName string
	output    string
}

func (f *cellFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.owner, "owner", 0, "user id")
	cmd.Flags().StringVar(&f.sheetName, "sheet", "", "sheet name (default: engine.link_source_sheet)")
	cmd.Flags().StringVar(&f.output, "output", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("owner")
}

// withSheet opens the engine, resolves the sheet and runs fn.
func (f *cellFlags) withSheet(cmd *cobra.Command, fn func(*engine.Sheet) error) error {
	if err := validateOutputFormat(f.output); err != nil {
		return err
	}
	e, cleanup, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sh, err := e.Sheet(sheetOrDefault(f.sheetName))
	if err != nil {
		return err
	}
	return fn(sh)
}

// NewCellGetCmd creates the command that shows one cell.
func NewCellGetCmd() *cobra.Command {
	var (
		flags   cellFlags
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "get <cell>",
		Short: "Show a cell",
		Long: `Shows one cell. With --explain a formula cell is also printed with its
references replaced by their current values.`,
		Example: `  calcpc cell get E2 --owner 42
  calcpc cell get E2 --owner 42 --explain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSheet(cmd, func(sh *engine.Sheet) error {
				if explain {
					return runExplain(cmd, sh, flags, args[0])
				}
				view, err := sh.GetCell(cmd.Context(), flags.owner, args[0])
				if err != nil {
					return err
				}
				if flags.output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				renderCell(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&explain, "explain", false, "show the formula with current operand values")
	return cmd
}

func runExplain(cmd *cobra.Command, sh *engine.Sheet, flags cellFlags, name string) error {
	ex, err := sh.Explain(cmd.Context(), flags.owner, name)
	if err != nil {
		return err
	}
	if flags.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), ex)
	}
	w := cmd.OutOrStdout()
	renderCell(w, ex.Cell)
	if ex.Expression != "" {
		fmt.Fprintf(w, "  %s\n  = %s\n", ex.Expression, ex.Resolved)
	}
	renderWarnings(cmd.ErrOrStderr(), ex.Warnings)
	return nil
}

// NewCellSetCmd creates the command that types a value into an input or date cell.
func NewCellSetCmd() *cobra.Command {
	var flags cellFlags
	cmd := &cobra.Command{
		Use:   "set <cell> <value>",
		Short: "Enter a number or date",
		Long: `Stores user input into an input cell (numbers with comma or period decimals)
or a date cell (dd/mm/yyyy), then recomputes the cells that depend on it.`,
		Example: `  calcpc cell set A1 1500 --owner 42
  calcpc cell set A2 "12,5" --owner 42
  calcpc cell set D1 01/03/2024 --owner 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSheet(cmd, func(sh *engine.Sheet) error {
				out, err := sh.SetInput(cmd.Context(), flags.owner, args[0], args[1])
				if err != nil {
					return err
				}
				return renderOutcome(cmd, flags.output, out)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewCellSelectCmd creates the command that picks a selectbox option.
func NewCellSelectCmd() *cobra.Command {
	var flags cellFlags
	cmd := &cobra.Command{
		Use:     "select <cell> <option>",
		Short:   "Choose a selectbox option",
		Example: `  calcpc cell select B2 Lenha --owner 42`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withSheet(cmd, func(sh *engine.Sheet) error {
				out, err := sh.SetSelection(cmd.Context(), flags.owner, args[0], args[1])
				if err != nil {
					return err
				}
				return renderOutcome(cmd, flags.output, out)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func renderOutcome(cmd *cobra.Command, format string, out engine.Outcome) error {
	if format == outputJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	if !out.Written {
		fmt.Fprintf(w, "%s not saved\n", out.Cell.Name)
	} else {
		renderCell(w, out.Cell)
		if out.Recalculated > 0 {
			fmt.Fprintf(w, "%d dependent cells recalculated\n", out.Recalculated)
		}
	}
	renderWarnings(cmd.ErrOrStderr(), out.Warnings)
	return nil
}
