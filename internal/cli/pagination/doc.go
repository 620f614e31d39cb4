// Package pagination implements the --page, --page-size and --sort flags of
// the list commands: validation, slicing and page metadata, plus sorting of
// cell views.
package pagination
