package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
	"github.com/pegada/calcpc/internal/template"
)

// NewTemplateLoadCmd creates the command that seeds template sheets.
func NewTemplateLoadCmd() *cobra.Command {
	var (
		legacy    bool
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Seed template sheets from a file",
		Long: `Seeds the template partition (owner 0) from a YAML template file or from a
legacy tab-separated export.

Nothing is written when any target sheet already has template rows.`,
		Example: `  # Seed every sheet of a YAML template
  calcpc template load templates/cafe.yaml

  # Import a legacy Windows-1252 export into one sheet
  calcpc template load forms_insumos.txt --legacy --sheet forms_insumos`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if legacy {
				if sheetName == "" {
					return fmt.Errorf("--sheet is required with --legacy")
				}
				return runTemplateLoadLegacy(cmd, args[0], sheetName)
			}
			return runTemplateLoad(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy", false, "read a tab-separated Windows-1252 export")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "target sheet for --legacy")
	return cmd
}

func runTemplateLoad(cmd *cobra.Command, path string) error {
	f, err := template.LoadFile(path)
	if err != nil {
		return err
	}

	st, cleanup, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	written, err := template.Seed(cmd.Context(), st, f)
	if err != nil {
		return err
	}
	for _, name := range f.SheetNames() {
		cmd.Printf("%s: %d rows\n", name, written[name])
	}
	cmd.Printf("Template %q loaded (%d sheets, %d reports)\n", f.Name, len(written), len(f.Reports))
	return nil
}

func runTemplateLoadLegacy(cmd *cobra.Command, path, sheetName string) error {
	if err := sheet.ValidateSheetName(sheetName); err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening legacy file: %w", err)
	}
	defer in.Close()

	ctx := cmd.Context()
	imported, err := template.ReadLegacy(ctx, in)
	if err != nil {
		return err
	}

	st, cleanup, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureSheet(ctx, sheetName); err != nil {
		return err
	}
	existing, err := st.Count(ctx, sheetName, sheet.TemplateOwner)
	if err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("%w: %s has %d rows", template.ErrTemplateExists, sheetName, existing)
	}

	n, err := template.SeedSheet(ctx, st, sheetName, imported.Cells)
	if err != nil {
		return err
	}
	for _, w := range imported.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	cmd.Printf("%s: %d rows loaded, %d user rows skipped\n", sheetName, n, imported.Skipped)
	return nil
}

// NewTemplateExportCmd creates the command that writes the template partition out.
func NewTemplateExportCmd() *cobra.Command {
	var (
		legacy     bool
		sheetName  string
		name       string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the template sheets to a file",
		Example: `  # Export every template sheet as YAML
  calcpc template export -o cafe.yaml

  # Export one sheet in the legacy format
  calcpc template export --legacy --sheet forms_tab -o forms_tab.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				out, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outputFile, err)
				}
				defer out.Close()
				w = out
			}

			st, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if legacy {
				if sheetName == "" {
					return fmt.Errorf("--sheet is required with --legacy")
				}
				rows, err := st.List(cmd.Context(), sheetName, sheet.TemplateOwner, store.Query{OrderBy: store.OrderByID})
				if err != nil {
					return err
				}
				return template.WriteLegacy(w, rows)
			}

			sheets := sheet.KnownSheets()
			if sheetName != "" {
				sheets = []string{sheetName}
			}
			f, err := template.Export(cmd.Context(), st, name, sheets)
			if err != nil {
				return err
			}
			return f.Write(w)
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy", false, "write the tab-separated Windows-1252 format")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "export only this sheet (required with --legacy)")
	cmd.Flags().StringVar(&name, "name", "calcpc", "template name written to the YAML file")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "write to a file instead of stdout")
	return cmd
}
