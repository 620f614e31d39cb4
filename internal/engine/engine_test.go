package engine_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

const owner int64 = 42

// seed writes a small coffee template: production inputs, a fuel selectbox
// driving a conditional, dates, hidden lookups and a results sheet.
func seed(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{sheet.Forms, sheet.Coefficients, sheet.CompanyResults} {
		require.NoError(t, s.EnsureSheet(ctx, name))
	}

	require.NoError(t, s.Insert(ctx, sheet.Forms,
		&sheet.Cell{Name: "A1", Type: sheet.TypeInput, DisplayText: "Produção: {value} kg", Column: 1, Row: 1, Section: "cafe"},
		&sheet.Cell{Name: "A2", Type: sheet.TypeInput, Column: 2, Row: 1, Section: "cafe"},
		&sheet.Cell{Name: "A3", Type: sheet.TypeFormula, Expression: "A1*A2", Column: 1, Row: 2, Section: "cafe"},
		&sheet.Cell{Name: "A5", Type: sheet.TypeInput, Column: 3, Row: 1, Section: "cafe"},
		&sheet.Cell{Name: "A4", Type: sheet.TypeFormula, Expression: "A3/A5", Column: 2, Row: 2, Section: "cafe"},
		&sheet.Cell{Name: "F1", Type: sheet.TypeTitle, DisplayText: "fora da grade", Column: 9, Row: 1, Section: "cafe"},
		&sheet.Cell{Name: "B1", Type: sheet.TypeSelectbox, SelectionOptions: "Lenha|Gás|Elétrico", Value: 7, Column: 1, Row: 1, Section: "energia"},
		&sheet.Cell{
			Name: "B2", Type: sheet.TypeConditional, Expression: "B1",
			SelectionOptions: "Lenha:C1|Gás:0,5|Elétrico:1/4", Column: 2, Row: 1, Section: "energia",
		},
		&sheet.Cell{Name: "D1", Type: sheet.TypeDateInput, Column: 1, Row: 1, Section: "periodo"},
		&sheet.Cell{Name: "D2", Type: sheet.TypeDateInput, Column: 2, Row: 1, Section: "periodo"},
		&sheet.Cell{Name: "D3", Type: sheet.TypeFormula, Expression: "D2 - D1", Column: 3, Row: 1, Section: "periodo"},
		&sheet.Cell{Name: "E1", Type: sheet.TypeLookupH, TextValue: "C2", Section: "cafe"},
		&sheet.Cell{Name: "E2", Type: sheet.TypeFormulaH, Expression: "Insumos!C1 * A1", Section: "cafe"},
	))

	require.NoError(t, s.Insert(ctx, sheet.Coefficients,
		&sheet.Cell{Name: "C1", Type: sheet.TypeInput, Expression: "2,5"},
		&sheet.Cell{Name: "C2", Type: sheet.TypeInput, Expression: "1/3"},
	))

	require.NoError(t, s.Insert(ctx, sheet.CompanyResults,
		&sheet.Cell{Name: "R1", Type: sheet.TypeLink, TextValue: "A3", Column: 1, Row: 1},
		&sheet.Cell{Name: "R2", Type: sheet.TypeLinkH, TextValue: "forms_tab!A1"},
		&sheet.Cell{Name: "R3", Type: sheet.TypeFormula, Expression: "R1 + R2", Column: 2, Row: 1},
	))
}

func newEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	seed(t, s)
	return engine.New(s, opts...), s
}

func forms(t *testing.T, e *engine.Engine) *engine.Sheet {
	t.Helper()
	sh, err := e.Sheet(sheet.Forms)
	require.NoError(t, err)
	return sh
}

func value(t *testing.T, sh *engine.Sheet, name string) float64 {
	t.Helper()
	c, err := sh.GetCell(context.Background(), owner, name)
	require.NoError(t, err)
	return c.Value
}

func hasWarning(ws []formula.Warning, code formula.WarningCode, cell string) bool {
	for _, w := range ws {
		if w.Code == code && w.Cell == cell {
			return true
		}
	}
	return false
}

func TestSheet_InvalidName(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Sheet("Forms Tab")
	require.ErrorIs(t, err, sheet.ErrInvalidSheetName)
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)

	n, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	assert.Equal(t, 13, n)
	first, err := s.Count(ctx, sheet.Forms, owner)
	require.NoError(t, err)

	n, err = sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	second, err := s.Count(ctx, sheet.Forms, owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureInitialized_Section(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)

	n, err := sh.EnsureInitialized(ctx, owner, "energia")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sh.EnsureInitialized(ctx, owner, "cafe")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	count, err := s.Count(ctx, sheet.Forms, owner)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestEnsureInitialized_TemplateOwner(t *testing.T) {
	e, _ := newEngine(t)
	_, err := forms(t, e).EnsureInitialized(context.Background(), sheet.TemplateOwner, "")
	require.ErrorIs(t, err, sheet.ErrTemplateOwner)

	_, err = forms(t, e).RecalculateAll(context.Background(), sheet.TemplateOwner)
	require.ErrorIs(t, err, sheet.ErrTemplateOwner)
}

func TestSetInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		raw       string
		want      float64
		wantWarn  bool
		wantLabel string
	}{
		{name: "comma decimal", raw: "1.234,5", want: 1234.5, wantLabel: "Produção: 1.234,50 kg"},
		{name: "period decimal", raw: "10.5", want: 10.5, wantLabel: "Produção: 10,50 kg"},
		{name: "blank", raw: "  ", want: 0, wantLabel: "Produção: 0,00 kg"},
		{name: "malformed", raw: "dez", want: 0, wantWarn: true, wantLabel: "Produção: 0,00 kg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t)
			sh := forms(t, e)
			_, err := sh.EnsureInitialized(ctx, owner, "")
			require.NoError(t, err)

			out, err := sh.SetInput(ctx, owner, "A1", tt.raw)
			require.NoError(t, err)
			assert.True(t, out.Written)
			assert.InDelta(t, tt.want, out.Cell.Value, 1e-9)
			assert.Equal(t, tt.wantLabel, out.Cell.Label)
			assert.Equal(t, tt.wantWarn, hasWarning(out.Warnings, formula.WarnInvalidNumber, "A1"))
		})
	}
}

func TestSetInput_NotEditable(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	_, err = sh.SetInput(ctx, owner, "A3", "5")
	require.ErrorIs(t, err, sheet.ErrNotEditable)

	_, err = sh.SetInput(ctx, owner, "B1", "5")
	require.ErrorIs(t, err, sheet.ErrNotEditable)

	_, err = sh.SetInput(ctx, owner, "Z9", "5")
	require.ErrorIs(t, err, sheet.ErrCellNotFound)
}

func TestRecalculateAll_Formulas(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	_, err = sh.SetInput(ctx, owner, "A1", "10")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "2,5")
	require.NoError(t, err)

	report, err := sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 6, report.Computed)

	assert.InDelta(t, 25.0, value(t, sh, "A3"), 1e-9)
	// A5 is 0: guarded division.
	assert.Zero(t, value(t, sh, "A4"))
	assert.True(t, hasWarning(report.Warnings, formula.WarnDivisionByZero, "A4"))
	// Hidden cells compute like visible ones.
	assert.InDelta(t, 1.0/3, value(t, sh, "E1"), 1e-12)
	assert.InDelta(t, 25.0, value(t, sh, "E2"), 1e-9)
}

func TestRecalculateAll_Deterministic(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A1", "3,3")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "7")
	require.NoError(t, err)

	_, err = sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	first, err := sh.ListAll(ctx, owner)
	require.NoError(t, err)

	_, err = sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	second, err := sh.ListAll(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDateDifference(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	out, err := sh.SetInput(ctx, owner, "D1", "01/01/2020")
	require.NoError(t, err)
	assert.True(t, out.Written)
	assert.Equal(t, "01/01/2020", out.Cell.Text)

	_, err = sh.SetInput(ctx, owner, "D2", "01/03/2020")
	require.NoError(t, err)

	_, err = sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.InDelta(t, 60/30.44, value(t, sh, "D3"), 1e-9)

	// Reversed dates never go negative.
	_, err = sh.SetInput(ctx, owner, "D1", "01/06/2020")
	require.NoError(t, err)
	_, err = sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, value(t, sh, "D3"))
}

func TestSetInput_InvalidDate(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "D1", "15/08/2021")
	require.NoError(t, err)

	for _, raw := range []string{"31/04/2021", "30/02/2020", "2021-08-15", "1/8/2021", "01/01/1899"} {
		out, err := sh.SetInput(ctx, owner, "D1", raw)
		require.NoError(t, err, raw)
		assert.False(t, out.Written, raw)
		assert.True(t, hasWarning(out.Warnings, formula.WarnInvalidDate, "D1"), raw)
		assert.Equal(t, "15/08/2021", out.Cell.Text, raw)
	}
}

func TestSetSelection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		option string
		want   float64
	}{
		{option: "Lenha", want: 2.5},
		{option: "Gás", want: 0.5},
		{option: "Elétrico", want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			e, _ := newEngine(t)
			sh := forms(t, e)
			_, err := sh.EnsureInitialized(ctx, owner, "")
			require.NoError(t, err)

			out, err := sh.SetSelection(ctx, owner, "B1", tt.option)
			require.NoError(t, err)
			assert.True(t, out.Written)
			assert.Equal(t, tt.option, out.Cell.Text)
			assert.Zero(t, out.Cell.Value)
			assert.Equal(t, 1, out.Recalculated)
			assert.InDelta(t, tt.want, value(t, sh, "B2"), 1e-12)
		})
	}
}

func TestSetSelection_Errors(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	_, err = sh.SetSelection(ctx, owner, "B1", "Carvão")
	require.ErrorIs(t, err, sheet.ErrInvalidOption)
	c, err := sh.GetCell(ctx, owner, "B1")
	require.NoError(t, err)
	assert.Empty(t, c.Text)

	_, err = sh.SetSelection(ctx, owner, "A1", "Lenha")
	require.ErrorIs(t, err, sheet.ErrNotEditable)
}

func TestConditional_NoMatch(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetSelection(ctx, owner, "B1", "Lenha")
	require.NoError(t, err)
	require.InDelta(t, 2.5, value(t, sh, "B2"), 1e-12)

	// A stale option no longer listed by the conditional.
	require.NoError(t, s.SetText(ctx, sheet.Forms, "B1", owner, "Carvão"))
	report, err := sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value(t, sh, "B2"))
	assert.True(t, hasWarning(report.Warnings, formula.WarnNoMatch, "B2"))
}

func TestCloneIsolation(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	_, err = sh.SetInput(ctx, owner, "A1", "99")
	require.NoError(t, err)
	_, err = sh.SetSelection(ctx, owner, "B1", "Gás")
	require.NoError(t, err)

	tpl, err := s.Get(ctx, sheet.Forms, "A1", sheet.TemplateOwner)
	require.NoError(t, err)
	assert.Zero(t, tpl.Value)
	tpl, err = s.Get(ctx, sheet.Forms, "B1", sheet.TemplateOwner)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, tpl.Value, 0)
	assert.Empty(t, tpl.TextValue)
}

func TestLinkCells(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A1", "4")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "5")
	require.NoError(t, err)
	_, err = sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)

	results, err := e.Sheet(sheet.CompanyResults)
	require.NoError(t, err)
	_, err = results.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	vals, err := results.Values(ctx, owner, "R1", "R2", "R3")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{20, 4, 24}, vals, 1e-9)
}

func TestListSection(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	views, err := sh.ListSection(ctx, owner, "cafe")
	require.NoError(t, err)

	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Name)
		assert.False(t, v.Hidden)
	}
	// Row 1 then row 2; F1 sits outside the grid and E1/E2 are hidden.
	assert.Equal(t, []string{"A1", "A2", "A5", "A3", "A4"}, names)

	energy, err := sh.ListSection(ctx, owner, "energia")
	require.NoError(t, err)
	require.Len(t, energy, 2)
	assert.Equal(t, []string{"Lenha", "Gás", "Elétrico"}, energy[0].Options)
	assert.Empty(t, energy[1].Options)
}

func TestValues_Missing(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)

	vals, err := sh.Values(ctx, owner, "A1", "ZZ1")
	require.ErrorIs(t, err, sheet.ErrCellNotFound)
	assert.Len(t, vals, 2)
}

func TestTopologicalOrdering(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSheet(ctx, sheet.Forms))
	// X1 is stored before the cell it reads.
	require.NoError(t, s.Insert(ctx, sheet.Forms,
		&sheet.Cell{Name: "X1", Type: sheet.TypeFormula, Expression: "X2+1"},
		&sheet.Cell{Name: "X2", Type: sheet.TypeFormula, Expression: "A1*2"},
		&sheet.Cell{Name: "A1", Type: sheet.TypeInput},
	))

	t.Run("insertion reads stale values", func(t *testing.T) {
		sh := forms(t, engine.New(s))
		_, err := sh.EnsureInitialized(ctx, 1, "")
		require.NoError(t, err)
		_, err = sh.SetInput(ctx, 1, "A1", "5")
		require.NoError(t, err)
		_, err = sh.RecalculateAll(ctx, 1)
		require.NoError(t, err)

		vals, err := sh.Values(ctx, 1, "X1", "X2")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 10}, vals)
	})

	t.Run("topological follows dependencies", func(t *testing.T) {
		sh := forms(t, engine.New(s, engine.WithOrdering(engine.OrderTopological)))
		_, err := sh.EnsureInitialized(ctx, 2, "")
		require.NoError(t, err)

		out, err := sh.SetInput(ctx, 2, "A1", "5")
		require.NoError(t, err)
		assert.Equal(t, 2, out.Recalculated)

		vals, err := sh.Values(ctx, 2, "X1", "X2")
		require.NoError(t, err)
		assert.Equal(t, []float64{11, 10}, vals)
	})
}

func TestTopologicalOrdering_Cycle(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSheet(ctx, sheet.Forms))
	require.NoError(t, s.Insert(ctx, sheet.Forms,
		&sheet.Cell{Name: "Y1", Type: sheet.TypeFormula, Expression: "Y2+1", Value: 3},
		&sheet.Cell{Name: "Y2", Type: sheet.TypeFormula, Expression: "Y1*2", Value: 4},
	))
	_, err := s.CloneTemplate(ctx, sheet.Forms, 1, "")
	require.NoError(t, err)

	sh := forms(t, engine.New(s, engine.WithOrdering(engine.OrderTopological)))
	_, err = sh.RecalculateAll(ctx, 1)
	require.ErrorIs(t, err, sheet.ErrCyclicDependency)

	vals, err := sh.Values(ctx, 1, "Y1", "Y2")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, vals)
}

func TestParseOrdering(t *testing.T) {
	o, err := engine.ParseOrdering("topological")
	require.NoError(t, err)
	assert.Equal(t, engine.OrderTopological, o)
	assert.Equal(t, "topological", o.String())

	o, err = engine.ParseOrdering("")
	require.NoError(t, err)
	assert.Equal(t, engine.OrderInsertion, o)

	_, err = engine.ParseOrdering("random")
	require.Error(t, err)
}

func TestEngine_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "calcpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	seed(t, s)

	sh := forms(t, engine.New(s))
	_, err = sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A1", "10")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "2")
	require.NoError(t, err)
	_, err = sh.SetSelection(ctx, owner, "B1", "Lenha")
	require.NoError(t, err)

	report, err := sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.OK())

	vals, err := sh.Values(ctx, owner, "A3", "B1", "B2", "E2")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{20, 0, 2.5, 25}, vals, 1e-9)
}

func TestEnsureInitialized_ZeroesSelectbox(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)

	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	assert.Zero(t, value(t, sh, "B1"), "template selectbox holds 7")

	// A newer row written outside the engine is reset on the next pass.
	require.NoError(t, s.Insert(ctx, sheet.Forms, &sheet.Cell{
		Name: "B1", Type: sheet.TypeSelectbox, SelectionOptions: "Lenha|Gás", Value: 3,
		OwnerID: owner, Column: 1, Row: 1, Section: "energia",
	}))
	assert.InDelta(t, 3.0, value(t, sh, "B1"), 0)

	report, err := sh.RecalculateAll(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Zero(t, value(t, sh, "B1"))
}

// failingStore rejects writes to one cell.
type failingStore struct {
	store.Store
	cell string
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) SetValue(ctx context.Context, table, name string, owner int64, v float64) error {
	if name == f.cell {
		return errDiskFull
	}
	return f.Store.SetValue(ctx, table, name, owner, v)
}

func TestRecalculateAll_WriteFailureDoesNotStopPass(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A1", "10")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "2")
	require.NoError(t, err)

	broken := forms(t, engine.New(&failingStore{Store: s, cell: "A3"}))
	report, err := broken.RecalculateAll(ctx, owner)
	require.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, err.Error(), "cell A3")

	require.NotNil(t, report)
	assert.False(t, report.OK())
	assert.Equal(t, []string{"A3"}, report.Failed)
	assert.Equal(t, 6, report.Computed)

	// Cells after the failed one were still written.
	assert.InDelta(t, 25.0, value(t, sh, "E2"), 1e-9)
	assert.Zero(t, value(t, sh, "A3"))
}

func TestEngine_LogsThroughContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetSelection(ctx, owner, "B1", "Gás")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"template cloned"`)
	assert.Contains(t, out, `"message":"recalculation finished"`)
	assert.Contains(t, out, `"message":"dependents recalculated"`)
	assert.Contains(t, out, `"component":"engine"`)
	assert.Contains(t, out, `"run_id":"`)
}

func TestExplain(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A1", "10")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "A2", "-2,5")
	require.NoError(t, err)
	_, err = sh.SetInput(ctx, owner, "D1", "01/01/2020")
	require.NoError(t, err)

	tests := []struct {
		cell     string
		resolved string
	}{
		{cell: "A3", resolved: "10*(-2.5)"},
		{cell: "E2", resolved: "2.5 * 10"},
		{cell: "D3", resolved: `"" - "01/01/2020"`},
		{cell: "A1", resolved: ""},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			ex, err := sh.Explain(ctx, owner, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.cell, ex.Cell.Name)
			assert.Equal(t, tt.resolved, ex.Resolved)
			assert.Empty(t, ex.Warnings)
		})
	}

	_, err = sh.Explain(ctx, owner, "Z9")
	require.ErrorIs(t, err, sheet.ErrCellNotFound)
}

func TestExplain_MissingReference(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(t)
	sh := forms(t, e)
	_, err := sh.EnsureInitialized(ctx, owner, "")
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, sheet.Forms, &sheet.Cell{
		Name: "G1", Type: sheet.TypeFormula, Expression: "A1 + Q7", OwnerID: owner,
	}))

	ex, err := sh.Explain(ctx, owner, "G1")
	require.NoError(t, err)
	assert.Equal(t, "0 + 0", ex.Resolved)
	assert.True(t, hasWarning(ex.Warnings, formula.WarnMissingReference, "G1"))
}
