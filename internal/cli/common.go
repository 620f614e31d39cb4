package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pegada/calcpc/internal/config"
	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/store"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// exitCodeIncomplete is used when a command ran but some results could not be saved.
const exitCodeIncomplete = 2

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}

// ExitCode maps an error returned by the root command onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isWriterTerminal reports whether w is a terminal. Buffers used in tests are not.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

func validateOutputFormat(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
}

// openStore opens the configured SQLite database.
func openStore(cmd *cobra.Command) (store.Store, func(), error) {
	cfg := config.GetGlobalConfig()
	if err := config.EnsureDatabaseDir(); err != nil {
		return nil, nil, err
	}

	st, err := store.OpenSQLite(cfg.Database.Path, store.WithBusyTimeout(cfg.Database.BusyTimeoutMs))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}

	ctx := cmd.Context()
	cleanup := func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Warn().Ctx(ctx).Err(closeErr).Msg("closing database")
		}
	}
	return st, cleanup, nil
}

// openEngine opens the configured database and builds an engine from the
// engine and output sections of the configuration.
func openEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	opts, err := engineOptions(config.GetGlobalConfig())
	if err != nil {
		return nil, nil, err
	}
	st, cleanup, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(st, opts...), cleanup, nil
}

func engineOptions(cfg *config.Config) ([]engine.Option, error) {
	ordering, err := engine.ParseOrdering(cfg.Engine.Ordering)
	if err != nil {
		return nil, fmt.Errorf("engine.ordering: %w", err)
	}
	formatter, err := locale.NewFormatterFor(cfg.Output.Locale)
	if err != nil {
		return nil, fmt.Errorf("output.locale: %w", err)
	}
	return []engine.Option{
		engine.WithOrdering(ordering),
		engine.WithEpsilon(cfg.Engine.DivisionEpsilon),
		engine.WithReferenceSheet(cfg.Engine.ReferenceSheet, cfg.Engine.ReferenceAlias),
		engine.WithLinkSource(cfg.Engine.LinkSourceSheet),
		engine.WithMaxColumns(cfg.Engine.MaxColumns),
		engine.WithFormatter(formatter, cfg.Output.Precision),
	}, nil
}

// sheetOrDefault returns name, or the data-entry sheet when name is empty.
func sheetOrDefault(name string) string {
	if name != "" {
		return name
	}
	return config.GetGlobalConfig().Engine.LinkSourceSheet
}

// outputFormatter returns the configured number formatter.
func outputFormatter() *locale.Formatter {
	f, err := locale.NewFormatterFor(config.GetGlobalConfig().Output.Locale)
	if err != nil {
		return locale.NewFormatter(locale.DefaultTag)
	}
	return f
}
