package cli

import (
	"github.com/spf13/cobra"
)

// NewSheetInitCmd creates the command that gives an owner its copy of a sheet.
func NewSheetInitCmd() *cobra.Command {
	var (
		owner     int64
		sheetName string
		section   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Copy the template into a user's sheet",
		Long: `Copies the template rows of a sheet into the user's own rows and computes
them. Nothing happens when the user already has rows in that scope.`,
		Example: `  calcpc sheet init --owner 42
  calcpc sheet init --owner 42 --sheet forms_resultados
  calcpc sheet init --owner 42 --section energia`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, cleanup, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sh, err := e.Sheet(sheetOrDefault(sheetName))
			if err != nil {
				return err
			}
			copied, err := sh.EnsureInitialized(cmd.Context(), owner, section)
			if err != nil {
				return err
			}
			if copied == 0 {
				cmd.Printf("%s: owner %d already initialized\n", sh.Name(), owner)
				return nil
			}
			cmd.Printf("%s: %d rows copied for owner %d\n", sh.Name(), copied, owner)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "user id")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default: engine.link_source_sheet)")
	cmd.Flags().StringVar(&section, "section", "", "copy only this section")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
