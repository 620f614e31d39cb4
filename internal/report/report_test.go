package report_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/report"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

const owner int64 = 7

func definition() report.Definition {
	return report.Definition{
		Name:         "comparativo",
		Title:        "Empresa x Setor",
		CompanySheet: sheet.CompanyResults,
		SectorSheet:  sheet.SectorResults,
		CarbonRow:    "Pegada de carbono",
		Rows: []report.RowSpec{
			{Label: "Pegada de carbono", Unit: "kg CO2e", Company: "R1", Sector: "S1"},
			{Label: "Consumo de água", Unit: "L", Company: "R2", Sector: "S2"},
		},
	}
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSheet(ctx, sheet.CompanyResults))
	require.NoError(t, s.EnsureSheet(ctx, sheet.SectorResults))
	require.NoError(t, s.Insert(ctx, sheet.CompanyResults,
		&sheet.Cell{Name: "R1", Type: sheet.TypeInput, Value: 1200, OwnerID: owner},
		&sheet.Cell{Name: "R2", Type: sheet.TypeInput, Value: 50, OwnerID: owner},
	))
	require.NoError(t, s.Insert(ctx, sheet.SectorResults,
		&sheet.Cell{Name: "S1", Type: sheet.TypeInput, Value: 1000, OwnerID: owner},
		&sheet.Cell{Name: "S2", Type: sheet.TypeInput, Value: 0, OwnerID: owner},
	))
	return engine.New(s)
}

func build(t *testing.T) *report.Comparison {
	t.Helper()
	cmp, err := report.Build(context.Background(), newEngine(t), definition(), owner)
	require.NoError(t, err)
	return cmp
}

func TestBuild(t *testing.T) {
	cmp := build(t)

	require.Len(t, cmp.Rows, 2)
	carbon := cmp.Rows[0]
	assert.InDelta(t, 1200, carbon.Company, 1e-9)
	assert.InDelta(t, 1000, carbon.Sector, 1e-9)
	assert.InDelta(t, 200, carbon.Delta, 1e-9)
	assert.True(t, carbon.HasPercent)
	assert.InDelta(t, 20, carbon.Percent, 1e-9)

	water := cmp.Rows[1]
	assert.InDelta(t, 50, water.Delta, 1e-9)
	assert.False(t, water.HasPercent, "zero sector value has no percentage")

	assert.False(t, cmp.Company.IsEmpty)
	assert.InDelta(t, 1200, cmp.Company.InputKg, 1e-9)
	assert.False(t, cmp.Sector.IsEmpty)
	assert.Equal(t, owner, cmp.Owner)
}

func TestBuildMissingCell(t *testing.T) {
	def := definition()
	def.Rows = append(def.Rows, report.RowSpec{Label: "Energia", Company: "R9", Sector: "S1"})

	_, err := report.Build(context.Background(), newEngine(t), def, owner)
	require.ErrorIs(t, err, sheet.ErrCellNotFound)
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*report.Definition)
		ok     bool
	}{
		{name: "valid", mutate: func(*report.Definition) {}, ok: true},
		{name: "no carbon row", mutate: func(d *report.Definition) { d.CarbonRow = "" }, ok: true},
		{name: "missing name", mutate: func(d *report.Definition) { d.Name = " " }},
		{name: "bad sheet", mutate: func(d *report.Definition) { d.SectorSheet = "Setor; DROP" }},
		{name: "no rows", mutate: func(d *report.Definition) { d.Rows = nil; d.CarbonRow = "" }},
		{name: "bad cell", mutate: func(d *report.Definition) { d.Rows[1].Company = "r2" }},
		{name: "unknown carbon row", mutate: func(d *report.Definition) { d.CarbonRow = "Emissões" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := definition()
			tt.mutate(&d)
			err := d.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, report.ErrInvalidDefinition)
		})
	}
}

func TestFind(t *testing.T) {
	defs := []report.Definition{definition()}

	d, err := report.Find(defs, "comparativo")
	require.NoError(t, err)
	assert.Equal(t, "Empresa x Setor", d.Title)

	_, err = report.Find(defs, "outro")
	assert.ErrorIs(t, err, report.ErrUnknownReport)
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, build(t), report.RenderOptions{Precision: 2}))

	out := buf.String()
	assert.Contains(t, out, "Empresa x Setor")
	assert.Contains(t, out, "Indicador")
	assert.Contains(t, out, "1.200,00")
	assert.Contains(t, out, "20,0%")
	assert.Contains(t, out, "Empresa: Equivale a")
	assert.Contains(t, out, "Setor: Equivale a")
}

func TestRenderStyled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, build(t), report.RenderOptions{Styled: true, Precision: 1}))

	out := buf.String()
	assert.Contains(t, out, "Empresa x Setor")
	assert.Contains(t, out, "Pegada de carbono")
	assert.Contains(t, out, "1.200,0")
	assert.Contains(t, out, "╭")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, build(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{report.ComparisonSheet, report.SummarySheet}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	tests := []struct {
		cell string
		want string
	}{
		{"A1", "Indicador"},
		{"A2", "Pegada de carbono"},
		{"B2", "kg CO2e"},
		{"C2", "1200"},
		{"D2", "1000"},
		{"E2", "200"},
		{"F2", "0.2"},
		{"F3", ""},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(report.ComparisonSheet, tt.cell, raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.cell)
	}

	title, err := f.GetCellValue(report.SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Empresa x Setor", title)
}
