package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pegada/calcpc/internal/cli/pagination"
	"github.com/pegada/calcpc/internal/engine"
)

// listPage is the JSON shape of a paginated listing.
type listPage struct {
	Cells      []engine.CellView `json:"cells"`
	Pagination pagination.Meta   `json:"pagination"`
}

// NewListCmd creates the command that lists a user's cells.
func NewListCmd() *cobra.Command {
	var (
		owner     int64
		sheetName string
		section   string
		all       bool
		output    string
		page      pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cells of a section",
		Long: `Lists the visible cells of one section ordered by row and column. Cells
placed outside the layout grid are skipped. With --all every cell is listed,
hidden ones included.

--sort accepts name, type, value, section or layout with an optional :asc or
:desc suffix. --page selects a page of --page-size cells (default 50).`,
		Example: `  calcpc list --owner 42 --section energia
  calcpc list --owner 42 --all --output json
  calcpc list --owner 42 --all --sort value:desc --page 1 --page-size 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if all == (section != "") {
				return errors.New("exactly one of --section or --all is required")
			}
			if err := page.Validate(); err != nil {
				return err
			}

			e, cleanup, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sh, err := e.Sheet(sheetOrDefault(sheetName))
			if err != nil {
				return err
			}

			var views []engine.CellView
			if all {
				views, err = sh.ListAll(cmd.Context(), owner)
			} else {
				views, err = sh.ListSection(cmd.Context(), owner, section)
			}
			if err != nil {
				return err
			}

			views, err = pagination.SortCells(views, page.Sort)
			if err != nil {
				return err
			}
			meta := pagination.NewMeta(page, len(views))
			views = pagination.Apply(page, views)

			if output == outputJSON {
				if page.IsEnabled() {
					return writeJSON(cmd.OutOrStdout(), listPage{Cells: views, Pagination: meta})
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			if len(views) == 0 {
				cmd.Println("No cells")
				return nil
			}
			if err := renderCells(cmd.OutOrStdout(), views); err != nil {
				return err
			}
			if page.IsEnabled() {
				cmd.Printf("Page %d of %d (%d cells)\n", meta.CurrentPage, meta.TotalPages, meta.TotalItems)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "user id")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default: engine.link_source_sheet)")
	cmd.Flags().StringVar(&section, "section", "", "section to list")
	cmd.Flags().BoolVar(&all, "all", false, "list every cell, hidden ones included")
	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	cmd.Flags().StringVar(&page.Sort, "sort", "", "sort by field[:asc|desc]")
	cmd.Flags().IntVar(&page.Page, "page", 0, "page number, starting at 1")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 0, "cells per page (requires --page)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
